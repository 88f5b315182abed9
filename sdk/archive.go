package sdk

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/pkg/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/track87/chaos-mesh-archive/sdk/bykind"
	"github.com/track87/chaos-mesh-archive/sdk/kind"
)

// NewArchive builds the archive record of obj, which finished at finishedAt.
func NewArchive(k kind.Kind, obj metav1.Object, finishedAt time.Time) *Archive {
	return &Archive{
		UID:        string(obj.GetUID()),
		Kind:       k,
		Namespace:  obj.GetNamespace(),
		Name:       obj.GetName(),
		StartTime:  obj.GetCreationTimestamp().Format(time.RFC3339),
		FinishTime: finishedAt.Format(time.RFC3339),
	}
}

// NewArchiveDetail builds the archive record of obj together with a snapshot
// of its spec. Objects without a Spec field are snapshotted whole.
func NewArchiveDetail(k kind.Kind, obj metav1.Object, finishedAt time.Time) (*ArchiveDetail, error) {
	var snapshot interface{} = obj
	v := reflect.Indirect(reflect.ValueOf(obj))
	if v.Kind() == reflect.Struct {
		if spec := v.FieldByName("Spec"); spec.IsValid() {
			snapshot = spec.Interface()
		}
	}
	info, err := json.Marshal(snapshot)
	if err != nil {
		return nil, errors.Wrap(err, "failed marshal experiment info")
	}
	return &ArchiveDetail{
		Archive:        *NewArchive(k, obj, finishedAt),
		ExperimentInfo: info,
	}, nil
}

// Validate checks that the kind is known and the timestamps are ordered
// RFC3339 values.
func (a *Archive) Validate() error {
	var allErrs field.ErrorList
	if a.UID == "" {
		allErrs = append(allErrs, field.Required(field.NewPath("uid"), ""))
	}
	if !a.Kind.Known() {
		allErrs = append(allErrs, field.NotSupported(field.NewPath("kind"), a.Kind, kindNames()))
	}

	start, startErr := time.Parse(time.RFC3339, a.StartTime)
	if startErr != nil {
		allErrs = append(allErrs, field.Invalid(field.NewPath("start_time"), a.StartTime, startErr.Error()))
	}
	finish, finishErr := time.Parse(time.RFC3339, a.FinishTime)
	if finishErr != nil {
		allErrs = append(allErrs, field.Invalid(field.NewPath("finish_time"), a.FinishTime, finishErr.Error()))
	}
	if startErr == nil && finishErr == nil && finish.Before(start) {
		allErrs = append(allErrs, field.Invalid(field.NewPath("finish_time"), a.FinishTime, "finish time is before start time"))
	}

	if len(allErrs) > 0 {
		return allErrs.ToAggregate()
	}
	return nil
}

// Duration is the time between start and finish; zero if either is malformed.
func (a *Archive) Duration() time.Duration {
	start, err := time.Parse(time.RFC3339, a.StartTime)
	if err != nil {
		return 0
	}
	finish, err := time.Parse(time.RFC3339, a.FinishTime)
	if err != nil {
		return 0
	}
	return finish.Sub(start)
}

// Decorate attaches the icon and translated label of the archive's kind.
func (a *Archive) Decorate(r *bykind.Resolver, size bykind.Size) DecoratedArchive {
	d := DecoratedArchive{Archive: *a}
	d.Icon, _ = r.Icon(a.Kind, size)
	if text, ok := r.Text(a.Kind); ok {
		d.Label = &text
	}
	return d
}

func kindNames() []string {
	kinds := kind.All()
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, string(k))
	}
	return names
}
