package exporter

import (
	"github.com/oneconcern/vcsmigrate/pkg/metrics"
)

// M describes metrics for the exporter package
type M struct {
	Volume struct {
		Changesets metrics.StageMetrics `group:"changesets" description:"metrics about exported changesets"`
		Tags       metrics.StageMetrics `group:"tags" description:"metrics about exported labels"`
	} `group:"volumetry" description:""`
	Usage struct {
		Commit metrics.UsageMetrics `group:"commit" description:"metrics about commits to the target"`
	} `group:"usage" description:""`
}
