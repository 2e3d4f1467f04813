// Package source defines the contract for readers of a legacy per-file versioned repository.
//
// A reader resolves paths into items. Containers list their children, leaves and containers
// yield their revision history. Content of content-bearing revisions is retrieved on demand.
package source
