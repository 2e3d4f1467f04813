package model

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const (
	// descriptor files
	commitDescriptorFile = "commit.yaml"
	tagDescriptorFile    = "tag.yaml"
	headDescriptorFile   = "HEAD.yaml"
	entriesFile          = "entries.yaml"
)

var validTagRe = regexp.MustCompile(`^[\pL\pN_]([\pL\pN._-]*[\pL\pN_])?$`)

// GetArchivePathToHead yields the path to the HEAD descriptor
func GetArchivePathToHead() string {
	return headDescriptorFile
}

// GetArchivePathPrefixToCommits yields the prefix of all commit descriptors
func GetArchivePathPrefixToCommits() string {
	return "commits/"
}

// GetArchivePathToCommit yields the path to a commit descriptor
func GetArchivePathToCommit(commitID string) string {
	return fmt.Sprint(GetArchivePathPrefixToCommits(), commitID, "/", commitDescriptorFile)
}

// GetArchivePathToEntries yields the path to the file list of a commit
func GetArchivePathToEntries(commitID string) string {
	return fmt.Sprint(GetArchivePathPrefixToCommits(), commitID, "/", entriesFile)
}

// GetArchivePathPrefixToTags yields the prefix of all tag descriptors
func GetArchivePathPrefixToTags() string {
	return "tags/"
}

// GetArchivePathToTag yields the path to a tag descriptor
func GetArchivePathToTag(name string) string {
	return fmt.Sprint(GetArchivePathPrefixToTags(), SanitizeTag(name), "/", tagDescriptorFile)
}

// GetArchivePathToBlob yields the path to a content-addressed blob
func GetArchivePathToBlob(hash string) string {
	if len(hash) < 2 {
		return fmt.Sprint("blobs/", hash)
	}
	return fmt.Sprint("blobs/", hash[:2], "/", hash)
}

// SanitizeTag turns a free-text label into a valid tag name
func SanitizeTag(label string) string {
	label = strings.TrimSpace(label)
	if validTagRe.MatchString(label) && !strings.Contains(label, "..") {
		return label
	}

	var b strings.Builder
	var last rune
	for _, r := range label {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune("._-", r) {
			r = '-'
		}
		if (r == '-' || r == '.') && (last == '-' || last == '.' || last == 0) {
			continue
		}
		b.WriteRune(r)
		last = r
	}
	return strings.TrimRight(b.String(), "-.")
}

// ValidateTag checks a tag name
func ValidateTag(name string) error {
	if !validTagRe.MatchString(name) || strings.Contains(name, "..") {
		return ErrInvalidTag.WrapMessage("%q", name)
	}
	return nil
}
