package plugin_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitkernel/physics/internal/core/ecs"
	"github.com/orbitkernel/physics/internal/core/plugin"
)

// stubPlugin records its lifecycle calls on a shared *[]string log so tests
// can assert ordering, not just that each method ran.
type stubPlugin struct {
	name     string
	version  plugin.Version
	required plugin.Version
	deps     []string

	log      *[]string
	failInit bool
}

func (p stubPlugin) Name() string                       { return p.name }
func (p stubPlugin) Version() plugin.Version            { return p.version }
func (p stubPlugin) RequiredAPIVersion() plugin.Version { return p.required }
func (p stubPlugin) Dependencies() []string             { return p.deps }

func (p stubPlugin) Initialize(plugin.Context) error {
	if p.failInit {
		return fmt.Errorf("stub %s: forced init failure", p.name)
	}
	if p.log != nil {
		*p.log = append(*p.log, "init:"+p.name)
	}
	return nil
}

func (p stubPlugin) Update(plugin.Context) error {
	if p.log != nil {
		*p.log = append(*p.log, "update:"+p.name)
	}
	return nil
}

func (p stubPlugin) Shutdown() error {
	if p.log != nil {
		*p.log = append(*p.log, "shutdown:"+p.name)
	}
	return nil
}

func indexOf(order []plugin.Plugin, name string) int {
	for i, p := range order {
		if p.Name() == name {
			return i
		}
	}
	return -1
}

func TestResolveOrdersDependenciesBeforeDependents(t *testing.T) {
	hostAPI := plugin.Version{Major: 1, Minor: 0, Patch: 0}
	reg := plugin.NewRegistry(hostAPI)

	// D depends on nothing; C depends on D; B depends on D; A depends on B and C.
	require.NoError(t, reg.Register(stubPlugin{name: "D", required: hostAPI}))
	require.NoError(t, reg.Register(stubPlugin{name: "C", required: hostAPI, deps: []string{"D"}}))
	require.NoError(t, reg.Register(stubPlugin{name: "B", required: hostAPI, deps: []string{"D"}}))
	require.NoError(t, reg.Register(stubPlugin{name: "A", required: hostAPI, deps: []string{"B", "C"}}))

	order, err := reg.Resolve()
	require.NoError(t, err)
	require.Len(t, order, 4)

	dIdx, bIdx, cIdx, aIdx := indexOf(order, "D"), indexOf(order, "B"), indexOf(order, "C"), indexOf(order, "A")
	assert.Less(t, dIdx, bIdx)
	assert.Less(t, dIdx, cIdx)
	assert.Less(t, bIdx, aIdx)
	assert.Less(t, cIdx, aIdx)
}

func TestResolveDetectsCycle(t *testing.T) {
	hostAPI := plugin.Version{Major: 1, Minor: 0, Patch: 0}
	reg := plugin.NewRegistry(hostAPI)

	require.NoError(t, reg.Register(stubPlugin{name: "X", required: hostAPI, deps: []string{"Y"}}))
	require.NoError(t, reg.Register(stubPlugin{name: "Y", required: hostAPI, deps: []string{"X"}}))

	_, err := reg.Resolve()
	require.Error(t, err)
	assert.True(t, ecs.IsCode(err, ecs.CodeCircularDependency))
}

func TestResolveReportsUnresolvedDependency(t *testing.T) {
	hostAPI := plugin.Version{Major: 1, Minor: 0, Patch: 0}
	reg := plugin.NewRegistry(hostAPI)
	require.NoError(t, reg.Register(stubPlugin{name: "A", required: hostAPI, deps: []string{"missing"}}))

	_, err := reg.Resolve()
	require.Error(t, err)
	assert.True(t, ecs.IsCode(err, ecs.CodeUnresolvedDependency))
}

func TestRegisterRejectsDuplicateName(t *testing.T) {
	hostAPI := plugin.Version{Major: 1, Minor: 0, Patch: 0}
	reg := plugin.NewRegistry(hostAPI)
	require.NoError(t, reg.Register(stubPlugin{name: "A", required: hostAPI}))

	err := reg.Register(stubPlugin{name: "A", required: hostAPI})
	require.Error(t, err)
	assert.True(t, ecs.IsCode(err, ecs.CodeDuplicateName))
}

func TestRegisterRejectsIncompatibleMajorVersion(t *testing.T) {
	hostAPI := plugin.Version{Major: 2, Minor: 0, Patch: 0}
	reg := plugin.NewRegistry(hostAPI)

	err := reg.Register(stubPlugin{name: "A", required: plugin.Version{Major: 1, Minor: 0, Patch: 0}})
	require.Error(t, err)
	assert.True(t, ecs.IsCode(err, ecs.CodeIncompatibleAPIVersion))
}

func TestRegisterAcceptsHigherHostMinor(t *testing.T) {
	hostAPI := plugin.Version{Major: 1, Minor: 5, Patch: 2}
	reg := plugin.NewRegistry(hostAPI)

	err := reg.Register(stubPlugin{name: "A", required: plugin.Version{Major: 1, Minor: 2, Patch: 9}})
	assert.NoError(t, err, "a host with a newer minor version must remain compatible with plugins requiring an older minor")
}

func TestDependencyGraphReflectsRegisteredPlugins(t *testing.T) {
	hostAPI := plugin.Version{Major: 1}
	reg := plugin.NewRegistry(hostAPI)
	require.NoError(t, reg.Register(stubPlugin{name: "A", required: hostAPI, deps: []string{"B"}}))
	require.NoError(t, reg.Register(stubPlugin{name: "B", required: hostAPI}))

	graph := reg.DependencyGraph()
	assert.Equal(t, []string{"B"}, graph["A"])
	assert.Empty(t, graph["B"])
}

func TestInitializeAllRunsInDependencyOrder(t *testing.T) {
	hostAPI := plugin.Version{Major: 1, Minor: 0, Patch: 0}
	reg := plugin.NewRegistry(hostAPI)
	var log []string

	// Same D/B/C/A DAG as TestResolveOrdersDependenciesBeforeDependents,
	// per spec.md §4.6's dependency-ordering scenario: D and B and C must
	// each initialize before A does.
	require.NoError(t, reg.Register(stubPlugin{name: "D", required: hostAPI, log: &log}))
	require.NoError(t, reg.Register(stubPlugin{name: "C", required: hostAPI, deps: []string{"D"}, log: &log}))
	require.NoError(t, reg.Register(stubPlugin{name: "B", required: hostAPI, deps: []string{"D"}, log: &log}))
	require.NoError(t, reg.Register(stubPlugin{name: "A", required: hostAPI, deps: []string{"B", "C"}, log: &log}))

	require.NoError(t, reg.InitializeAll(plugin.Context{}))

	dIdx, bIdx, cIdx, aIdx := indexOf2(log, "init:D"), indexOf2(log, "init:B"), indexOf2(log, "init:C"), indexOf2(log, "init:A")
	assert.Less(t, dIdx, bIdx)
	assert.Less(t, dIdx, cIdx)
	assert.Less(t, bIdx, aIdx)
	assert.Less(t, cIdx, aIdx)
}

func TestUpdateAllRunsInDependencyOrder(t *testing.T) {
	hostAPI := plugin.Version{Major: 1, Minor: 0, Patch: 0}
	reg := plugin.NewRegistry(hostAPI)
	var log []string

	require.NoError(t, reg.Register(stubPlugin{name: "base", required: hostAPI, log: &log}))
	require.NoError(t, reg.Register(stubPlugin{name: "top", required: hostAPI, deps: []string{"base"}, log: &log}))

	require.NoError(t, reg.UpdateAll(plugin.Context{}))
	assert.Equal(t, []string{"update:base", "update:top"}, log)
}

func TestShutdownAllRunsInReverseDependencyOrder(t *testing.T) {
	hostAPI := plugin.Version{Major: 1, Minor: 0, Patch: 0}
	reg := plugin.NewRegistry(hostAPI)
	var log []string

	require.NoError(t, reg.Register(stubPlugin{name: "base", required: hostAPI, log: &log}))
	require.NoError(t, reg.Register(stubPlugin{name: "top", required: hostAPI, deps: []string{"base"}, log: &log}))

	require.NoError(t, reg.ShutdownAll())
	assert.Equal(t, []string{"shutdown:top", "shutdown:base"}, log)
}

func TestInitializeAllStopsOnFirstError(t *testing.T) {
	hostAPI := plugin.Version{Major: 1, Minor: 0, Patch: 0}
	reg := plugin.NewRegistry(hostAPI)
	var log []string

	require.NoError(t, reg.Register(stubPlugin{name: "broken", required: hostAPI, failInit: true}))
	require.NoError(t, reg.Register(stubPlugin{name: "dependent", required: hostAPI, deps: []string{"broken"}, log: &log}))

	err := reg.InitializeAll(plugin.Context{})
	require.Error(t, err)
	assert.Empty(t, log, "a plugin depending on a failed init must never itself initialize")
}

func TestGetByNameFindsRegisteredPlugin(t *testing.T) {
	hostAPI := plugin.Version{Major: 1}
	reg := plugin.NewRegistry(hostAPI)
	require.NoError(t, reg.Register(stubPlugin{name: "A", required: hostAPI}))

	p, ok := reg.GetByName("A")
	require.True(t, ok)
	assert.Equal(t, "A", p.Name())

	_, ok = reg.GetByName("missing")
	assert.False(t, ok)
}

func indexOf2(log []string, entry string) int {
	for i, e := range log {
		if e == entry {
			return i
		}
	}
	return -1
}
