// Package sdk
// marsdong 2022/4/21
package sdk

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"time"

	"github.com/chaos-mesh/chaos-mesh/api/v1alpha1"
	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	v1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	pkgclient "sigs.k8s.io/controller-runtime/pkg/client"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/track87/chaos-mesh-archive/sdk/kind"
)

// DefaultNamespace is where experiments are listed unless WithNamespace is given.
const DefaultNamespace = "chaos-testing"

var (
	NotFoundErr    = errors.New("resource not found")
	NotFinishedErr = errors.New("experiment not finished")
	scheme         = runtime.NewScheme()
)

func init() {
	_ = clientgoscheme.AddToScheme(scheme)
	_ = v1alpha1.AddToScheme(scheme)
}

// Scheme returns the scheme the client registers chaos-mesh types into.
func Scheme() *runtime.Scheme {
	return scheme
}

// Client define APi sets fro chaos mesh
type Client interface {
	// CreateExperiment
	// @Description 创建特定类型的实验
	// @Author marsdong 2022-04-20 18:52:55
	// @param ctx
	// @param kind 实验类型
	// @param chaos 实验结构体，根据实验类型
	// @return *Experiment
	// @return error
	CreateExperiment(ctx context.Context, kind kind.Kind, chaos interface{}) (*Experiment, error)
	// DeleteExperiment
	// @Description 删除实验， 该操作会导致实验终止
	// @Author marsdong 2022-04-20 18:54:17
	// @param ctx
	// @param namespace 实验所在的命名空间
	// @param name 实验名称
	// @param kind 实验类型
	// @return error 如果不存在返回NotFoundErr
	DeleteExperiment(ctx context.Context, namespace, name string, kind kind.Kind) error
	// DescribeExperimentWithEvents
	// @Description  查询实验以及关联的events
	// @Author marsdong 2022-04-20 18:55:02
	// @param ctx
	// @param namespace 实验所在的命名空间
	// @param name 实验名称
	// @param kind 实验类型
	// @return *Experiment 实验信息，包含events
	// @return error 如果不存在返回NotFoundErr
	DescribeExperimentWithEvents(ctx context.Context, namespace, name string, kind kind.Kind) (*Experiment, error)
	// DescribeExperiment
	// @Description  查询实验
	// @Author marsdong 2022-04-20 18:55:02
	// @param ctx
	// @param namespace 实验所在的命名空间
	// @param name 实验名称
	// @param kind 实验类型
	// @return *Experiment 实验信息
	// @return error 如果不存在返回NotFoundErr
	DescribeExperiment(ctx context.Context, namespace, name string, kind kind.Kind) (*Experiment, error)
	// ListExperiments
	// @Description 查询某种类型实验的集合
	// @Author marsdong 2022-04-20 18:58:38
	// @param ctx
	// @param kind 实验类型
	// @return []*Experiment
	// @return error 如果数据未空，不返回错误
	ListExperiments(ctx context.Context, kind kind.Kind) ([]*Experiment, error)
	// ListEvents
	// @Description 查询实验事件集合
	// @Author marsdong 2022-04-20 18:59:46
	// @param ctx
	// @param experimentUid 实验的唯一ID
	// @param eventType 事件类型
	// @param reason
	// @return []v1.Event
	// @return error
	ListEvents(ctx context.Context, experimentUid, eventType, reason string) ([]v1.Event, error)
	// ArchiveExperiment
	// @Description 生成已结束实验的归档记录，包含实验配置
	// @param ctx
	// @param namespace 实验所在的命名空间
	// @param name 实验名称
	// @param kind 实验类型
	// @return *ArchiveDetail
	// @return error 如果不存在返回NotFoundErr，实验未结束返回NotFinishedErr
	ArchiveExperiment(ctx context.Context, namespace, name string, kind kind.Kind) (*ArchiveDetail, error)
	// ListArchives
	// @Description 查询某种类型已结束实验的归档记录
	// @param ctx
	// @param kind 实验类型
	// @return []*Archive
	// @return error
	ListArchives(ctx context.Context, kind kind.Kind) ([]*Archive, error)
}

// Option configures the client.
type Option func(*client)

// WithNamespace sets the namespace ListExperiments and ListArchives look in.
func WithNamespace(namespace string) Option {
	return func(c *client) {
		c.namespace = namespace
	}
}

// WithLogger replaces the client logger.
func WithLogger(logger logr.Logger) Option {
	return func(c *client) {
		c.log = logger
	}
}

type client struct {
	kubeCli   pkgclient.Client
	namespace string
	log       logr.Logger
}

// CreateExperiment 创建实验
func (c *client) CreateExperiment(ctx context.Context, k kind.Kind, chaos interface{}) (*Experiment, error) {
	chaosKind, err := lookupKind(k)
	if err != nil {
		return nil, err
	}

	object := chaosKind.SpawnObject()
	reflect.ValueOf(object).Elem().FieldByName("ObjectMeta").Set(reflect.ValueOf(metav1.ObjectMeta{}))

	bytes, err := json.Marshal(chaos)
	if err != nil {
		return nil, errors.Wrap(err, "failed marshal chaos")
	}
	if err = json.Unmarshal(bytes, object); err != nil {
		return nil, errors.Wrap(err, "failed unmarshal chaos")
	}

	if err = c.kubeCli.Create(ctx, object); err != nil {
		return nil, errors.Wrap(err, "failed create chaos")
	}
	c.log.Info("created experiment", "kind", k, "namespace", object.GetNamespace(), "name", object.GetName())
	return c.DescribeExperiment(ctx, object.GetNamespace(), object.GetName(), k)
}

// DeleteExperiment 删除实验
func (c *client) DeleteExperiment(ctx context.Context, namespace, name string, k kind.Kind) error {
	chaos, err := c.getChaos(ctx, namespace, name, k)
	if err != nil {
		return err
	}

	if err := c.kubeCli.Delete(ctx, chaos); err != nil {
		return errors.Wrap(err, "failed delete chaos")
	}
	c.log.Info("deleted experiment", "kind", k, "namespace", namespace, "name", name)
	return nil
}

// DescribeExperimentWithEvents 查询实验，包含实验事件集合
func (c *client) DescribeExperimentWithEvents(ctx context.Context, namespace, name string, k kind.Kind) (*Experiment, error) {
	experiment, err := c.DescribeExperiment(ctx, namespace, name, k)
	if err != nil {
		return nil, err
	}

	events, err := listExperimentEvents(ctx, c.kubeCli, experiment.UID, "", "")
	if err != nil {
		return nil, err
	}
	experiment.Events = events
	return experiment, nil
}

// DescribeExperiment 查询实验
func (c *client) DescribeExperiment(ctx context.Context, namespace, name string, k kind.Kind) (*Experiment, error) {
	chaos, err := c.getChaos(ctx, namespace, name, k)
	if err != nil {
		return nil, err
	}
	return newExperiment(k, chaos), nil
}

// ListExperiments 检索实验
func (c *client) ListExperiments(ctx context.Context, k kind.Kind) ([]*Experiment, error) {
	chaosKind, err := lookupKind(k)
	if err != nil {
		return nil, err
	}

	list := chaosKind.SpawnList()
	listOptions := &pkgclient.ListOptions{Namespace: c.namespace}
	if err := c.kubeCli.List(ctx, list, listOptions); err != nil {
		return nil, errors.Wrap(err, "failed list chaos")
	}

	experimentList := make([]*Experiment, 0)
	for _, item := range list.GetItems() {
		experimentList = append(experimentList, &Experiment{
			Namespace: item.GetNamespace(),
			Name:      item.GetName(),
			Kind:      k,
			UID:       string(item.GetUID()),
			Created:   item.GetCreationTimestamp().Format(time.RFC3339),
			Status:    getChaosStatus(item.(v1alpha1.InnerObject)),
		})
	}
	return experimentList, nil
}

// ListEvents 检索实验的事件
func (c *client) ListEvents(ctx context.Context, experimentUid, eventType, reason string) ([]v1.Event, error) {
	return listExperimentEvents(ctx, c.kubeCli, experimentUid, eventType, reason)
}

// ArchiveExperiment 归档已结束的实验
func (c *client) ArchiveExperiment(ctx context.Context, namespace, name string, k kind.Kind) (*ArchiveDetail, error) {
	chaos, err := c.getChaos(ctx, namespace, name, k)
	if err != nil {
		return nil, err
	}
	if !finished(getChaosStatus(chaos.(v1alpha1.InnerObject))) {
		return nil, NotFinishedErr
	}

	finishedAt, err := c.finishTime(ctx, chaos)
	if err != nil {
		return nil, err
	}
	return NewArchiveDetail(k, chaos, finishedAt)
}

// ListArchives 检索已结束实验的归档
func (c *client) ListArchives(ctx context.Context, k kind.Kind) ([]*Archive, error) {
	chaosKind, err := lookupKind(k)
	if err != nil {
		return nil, err
	}

	list := chaosKind.SpawnList()
	listOptions := &pkgclient.ListOptions{Namespace: c.namespace}
	if err := c.kubeCli.List(ctx, list, listOptions); err != nil {
		return nil, errors.Wrap(err, "failed list chaos")
	}

	archives := make([]*Archive, 0)
	for _, item := range list.GetItems() {
		if !finished(getChaosStatus(item.(v1alpha1.InnerObject))) {
			continue
		}
		finishedAt, err := c.finishTime(ctx, item)
		if err != nil {
			return nil, err
		}
		archives = append(archives, NewArchive(k, item, finishedAt))
	}
	return archives, nil
}

func (c *client) getChaos(ctx context.Context, namespace, name string, k kind.Kind) (pkgclient.Object, error) {
	chaosKind, err := lookupKind(k)
	if err != nil {
		return nil, err
	}

	var chaos pkgclient.Object = chaosKind.SpawnObject()
	namespacedName := types.NamespacedName{Namespace: namespace, Name: name}
	if err := c.kubeCli.Get(ctx, namespacedName, chaos); err != nil {
		if isNotFound(err) {
			return nil, NotFoundErr
		}
		return nil, errors.Wrap(err, "failed get chaos")
	}
	return chaos, nil
}

// finishTime is the timestamp of the experiment's latest event, or its
// creation time when it has none.
func (c *client) finishTime(ctx context.Context, obj metav1.Object) (time.Time, error) {
	events, err := listExperimentEvents(ctx, c.kubeCli, string(obj.GetUID()), "", "")
	if err != nil {
		return time.Time{}, err
	}
	latest := obj.GetCreationTimestamp().Time
	for _, event := range events {
		if ts := eventTime(event); ts.After(latest) {
			latest = ts
		}
	}
	return latest, nil
}

// eventTime is the most recent timestamp an event carries. Events recorded
// through events.k8s.io only set EventTime.
func eventTime(event v1.Event) time.Time {
	switch {
	case !event.LastTimestamp.IsZero():
		return event.LastTimestamp.Time
	case !event.FirstTimestamp.IsZero():
		return event.FirstTimestamp.Time
	}
	return event.EventTime.Time
}

func newExperiment(k kind.Kind, chaos pkgclient.Object) *Experiment {
	return &Experiment{
		Namespace: chaos.GetNamespace(),
		Name:      chaos.GetName(),
		Kind:      k,
		UID:       string(chaos.GetUID()),
		Created:   chaos.GetCreationTimestamp().Format(time.RFC3339),
		Status:    getChaosStatus(chaos.(v1alpha1.InnerObject)),
	}
}

func lookupKind(k kind.Kind) (*v1alpha1.ChaosKind, error) {
	name, ok := k.ClusterKind()
	if !ok {
		return nil, errors.Errorf("not support chaos kind '%s'", k)
	}
	return v1alpha1.AllKinds()[name], nil
}

func listExperimentEvents(ctx context.Context, cli pkgclient.Client, experimentUid, eventType, reason string) ([]v1.Event, error) {
	list := &v1.EventList{}
	filter := map[string]string{
		"involvedObject.uid": experimentUid,
	}
	if eventType != "" {
		filter["type"] = eventType
	}
	if reason != "" {
		filter["reason"] = reason
	}
	options := &pkgclient.ListOptions{
		Raw: &metav1.ListOptions{
			FieldSelector: labels.SelectorFromSet(filter).String(),
		},
	}
	if err := cli.List(ctx, list, options); err != nil {
		return nil, errors.Wrap(err, "failed list events")
	}

	// not every client honors field selectors
	events := make([]v1.Event, 0, len(list.Items))
	for _, event := range list.Items {
		if string(event.InvolvedObject.UID) != experimentUid ||
			(eventType != "" && event.Type != eventType) ||
			(reason != "" && event.Reason != reason) {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func getChaosStatus(obj v1alpha1.InnerObject) *v1alpha1.ChaosStatus {
	return obj.GetStatus()
}

// finished reports whether the experiment was stopped and every target recovered.
func finished(status *v1alpha1.ChaosStatus) bool {
	if status == nil || status.Experiment.DesiredPhase != v1alpha1.StoppedPhase {
		return false
	}
	for _, condition := range status.Conditions {
		if condition.Type == v1alpha1.ConditionAllRecovered {
			return condition.Status == v1.ConditionTrue
		}
	}
	return false
}

// NewClient
// @Description create chaos mesh client
// @Author marsdong 2022-04-20 19:09:53
// @param opts
// @return Client
// @return error
func NewClient(opts ...Option) (Client, error) {
	cfg, err := ctrl.GetConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed load kube config")
	}
	cli, err := pkgclient.New(cfg, pkgclient.Options{
		Scheme: scheme,
	})
	if err != nil {
		return nil, err
	}
	return NewClientFor(cli, opts...), nil
}

// NewClientFor wraps an existing controller-runtime client.
func NewClientFor(kubeCli pkgclient.Client, opts ...Option) Client {
	c := &client{
		kubeCli:   kubeCli,
		namespace: DefaultNamespace,
		log:       logf.Log.WithName("chaos-mesh-sdk"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientOrDie
// @Description create chaos mesh client
// panic if error happens
// @Author marsdong 2022-04-21 15:14:28
// @return Client
func NewClientOrDie(opts ...Option) Client {
	cli, err := NewClient(opts...)
	if err != nil {
		panic(err)
	}
	return cli
}

func isNotFound(err error) bool {
	statusErr, ok := err.(*apierrors.StatusError)
	if !ok {
		return false
	}
	return statusErr.ErrStatus.Code == http.StatusNotFound
}
