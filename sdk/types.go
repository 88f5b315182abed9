// Package sdk
// marsdong 2022/4/21
package sdk

import (
	"encoding/json"

	"github.com/chaos-mesh/chaos-mesh/api/v1alpha1"
	v1 "k8s.io/api/core/v1"

	"github.com/track87/chaos-mesh-archive/sdk/bykind"
	"github.com/track87/chaos-mesh-archive/sdk/kind"
)

// Experiment defines the information of an experiment.
type Experiment struct {
	Namespace string                `json:"namespace"`
	Name      string                `json:"name"`
	Kind      kind.Kind             `json:"kind"`
	UID       string                `json:"uid"`
	Created   string                `json:"created_at"`
	Status    *v1alpha1.ChaosStatus `json:"status"`
	Events    []v1.Event            `json:"events"`
}

// Archive is the record of a finished experiment.
type Archive struct {
	UID        string    `json:"uid"`
	Kind       kind.Kind `json:"kind"`
	Namespace  string    `json:"namespace"`
	Name       string    `json:"name"`
	StartTime  string    `json:"start_time"`
	FinishTime string    `json:"finish_time"`
}

// ArchiveDetail is an archive with the experiment configuration it ran with.
type ArchiveDetail struct {
	Archive        `json:",inline"`
	ExperimentInfo json.RawMessage `json:"experiment_info"`
}

// DecoratedArchive is an archive ready for display.
type DecoratedArchive struct {
	Archive `json:",inline"`
	Icon    bykind.Icon `json:"icon"`
	// Label is nil when the kind has no mapping.
	Label *string `json:"label"`
}
