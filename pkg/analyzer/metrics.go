package analyzer

import (
	"github.com/oneconcern/vcsmigrate/pkg/metrics"
)

// M describes metrics for the analyzer package
type M struct {
	Volume struct {
		Items     metrics.FilesMetrics `group:"items" description:"metrics about ingested source items"`
		Revisions metrics.StageMetrics `group:"revisions" description:"metrics about ingested revisions"`
	} `group:"volumetry" description:""`
}
