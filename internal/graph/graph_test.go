package graph

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/specialistvlad/tilecomp/internal/datatype"
	"github.com/specialistvlad/tilecomp/internal/operation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOp is a configurable operation that records type notifications.
type fakeOp struct {
	kind     string
	sig      operation.Signature
	notified map[int]datatype.DataType
}

func (f *fakeOp) Kind() string                               { return f.kind }
func (f *fakeOp) Signature() operation.Signature             { return f.sig }
func (f *fakeOp) ExecutePixel(out *operation.Color, x, y int) {}
func (f *fakeOp) NotifyActualDataTypeSet(input int, dt datatype.DataType) {
	if f.notified == nil {
		f.notified = make(map[int]datatype.DataType)
	}
	f.notified[input] = dt
}

// sizedOp has a natural resolution and counts how often it is resolved.
type sizedOp struct {
	fakeOp
	natural operation.Resolution
	runs    int
}

func (s *sizedOp) DetermineResolution(_ operation.InputResolutions, _ operation.Resolution) operation.Resolution {
	s.runs++
	return s.natural
}

func newOp(kind string, ins []datatype.DataType, outs ...datatype.DataType) *fakeOp {
	op := &fakeOp{kind: kind}
	for i, dt := range ins {
		op.sig.Inputs = append(op.sig.Inputs, operation.InputDecl{Name: inputName(i), Type: dt})
	}
	for i, dt := range outs {
		op.sig.Outputs = append(op.sig.Outputs, operation.OutputDecl{Name: outputName(i), Type: dt})
	}
	return op
}

func inputName(i int) string  { return string(rune('a' + i)) }
func outputName(i int) string { return []string{"out", "alt"}[i] }

type constOp struct {
	fakeOp
	dt    datatype.DataType
	value operation.Color
}

func constants(dt datatype.DataType, value operation.Color) operation.Operation {
	return &constOp{
		fakeOp: fakeOp{kind: "const", sig: operation.Signature{Outputs: []operation.OutputDecl{{Name: "out", Type: dt}}}},
		dt:     dt,
		value:  value,
	}
}

func add(t *testing.T, g *Graph, name string, op operation.Operation) OperationID {
	t.Helper()
	id, err := g.AddOperation(name, op)
	require.NoError(t, err)
	return id
}

func connect(t *testing.T, g *Graph, from, to SocketID) ConnectionID {
	t.Helper()
	id, err := g.Connect(from, to)
	require.NoError(t, err)
	return id
}

func countConnections(g *Graph) int {
	n := 0
	for range g.Connections() {
		n++
	}
	return n
}

func TestNew(t *testing.T) {
	g := New()
	require.NotNil(t, g)
	assert.Equal(t, 0, g.Len())
	assert.Empty(t, g.GraphOutputs())
}

func TestAddOperation(t *testing.T) {
	g := New()
	id := add(t, g, "blur", newOp("blur", []datatype.DataType{datatype.Color, datatype.Value}, datatype.Color))

	assert.Len(t, g.Inputs(id), 2)
	assert.Len(t, g.Outputs(id), 1)
	assert.Equal(t, "blur", g.Name(id))

	in, ok := g.InputByName(id, "b")
	require.True(t, ok)
	s, ok := g.Socket(in)
	require.True(t, ok)
	assert.Equal(t, InputSocket, s.Kind)
	assert.Equal(t, 1, s.Index)
	assert.Equal(t, datatype.Value, s.Declared)

	_, ok = g.OutputByName(id, "missing")
	assert.False(t, ok)
	assert.Equal(t, NoSocket, g.Input(id, 5))

	_, err := g.AddOperation("blur", newOp("blur", nil))
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestConnect(t *testing.T) {
	g := New()
	a := add(t, g, "a", newOp("src", nil, datatype.Color))
	b := add(t, g, "b", newOp("pass", []datatype.DataType{datatype.Color}, datatype.Color))
	c := add(t, g, "c", newOp("pass", []datatype.DataType{datatype.Color}, datatype.Color))

	connect(t, g, g.Output(a, 0), g.Input(b, 0))
	connect(t, g, g.Output(b, 0), g.Input(c, 0))

	t.Run("input accepts one connection", func(t *testing.T) {
		_, err := g.Connect(g.Output(a, 0), g.Input(b, 0))
		assert.ErrorIs(t, err, ErrInputConnected)
	})
	t.Run("socket kinds are checked", func(t *testing.T) {
		_, err := g.Connect(g.Input(b, 0), g.Output(c, 0))
		assert.ErrorIs(t, err, ErrSocketKind)
	})
	t.Run("cycles are rejected at connect time", func(t *testing.T) {
		d := add(t, g, "d", newOp("mix", []datatype.DataType{datatype.Color, datatype.Color}, datatype.Color))
		connect(t, g, g.Output(c, 0), g.Input(d, 0))
		_, err := g.Connect(g.Output(d, 0), g.Input(d, 1))
		assert.ErrorIs(t, err, ErrCycle)
	})
	t.Run("output fans out", func(t *testing.T) {
		assert.Len(t, g.ConnectionsOf(g.Output(a, 0)), 1)
		e := add(t, g, "e", newOp("pass", []datatype.DataType{datatype.Color}, datatype.Color))
		connect(t, g, g.Output(a, 0), g.Input(e, 0))
		assert.Len(t, g.ConnectionsOf(g.Output(a, 0)), 2)
	})
}

func TestDisconnect(t *testing.T) {
	g := New()
	a := add(t, g, "a", newOp("src", nil, datatype.Color))
	b := add(t, g, "b", newOp("pass", []datatype.DataType{datatype.Color}, datatype.Color))
	connect(t, g, g.Output(a, 0), g.Input(b, 0))

	require.NoError(t, g.Disconnect(g.Input(b, 0)))
	assert.False(t, g.IsConnected(g.Input(b, 0)))
	assert.False(t, g.IsConnected(g.Output(a, 0)))
	assert.Equal(t, 0, countConnections(g))
	assert.ErrorIs(t, g.Disconnect(g.Output(a, 0)), ErrSocketKind)
}

func TestRelinkConnections(t *testing.T) {
	setup := func(t *testing.T) (*Graph, OperationID, OperationID, OperationID) {
		g := New(WithConstants(constants))
		src := add(t, g, "src", newOp("src", nil, datatype.Color))
		proxy := add(t, g, "proxy", newOp("group", []datatype.DataType{datatype.Color}))
		inner := add(t, g, "inner", newOp("pass", []datatype.DataType{datatype.Color}, datatype.Color))
		connect(t, g, g.Output(src, 0), g.Input(proxy, 0))
		return g, src, proxy, inner
	}

	t.Run("moves the connection", func(t *testing.T) {
		g, src, proxy, inner := setup(t)
		g.RelinkConnections(g.Input(proxy, 0), g.Input(inner, 0), false, -1, false)

		conn, ok := g.ConnectionOf(g.Input(inner, 0))
		require.True(t, ok)
		assert.Equal(t, g.Output(src, 0), conn.From)
		assert.Equal(t, g.Input(inner, 0), conn.To)
		assert.False(t, g.IsConnected(g.Input(proxy, 0)))
		assert.Equal(t, 1, countConnections(g))
	})

	t.Run("duplicate keeps the source connected", func(t *testing.T) {
		g, src, proxy, inner := setup(t)
		g.RelinkConnections(g.Input(proxy, 0), g.Input(inner, 0), false, -1, true)

		assert.True(t, g.IsConnected(g.Input(proxy, 0)))
		assert.True(t, g.IsConnected(g.Input(inner, 0)))
		conns := g.ConnectionsOf(g.Output(src, 0))
		require.Len(t, conns, 2)
		assert.NotEqual(t, conns[0].ID, conns[1].ID)
		assert.Equal(t, conns[0].From, conns[1].From)
		assert.ElementsMatch(t, []SocketID{g.Input(proxy, 0), g.Input(inner, 0)}, []SocketID{conns[0].To, conns[1].To})
		assert.Equal(t, 2, countConnections(g))
	})

	t.Run("occupied target panics", func(t *testing.T) {
		g, src, proxy, _ := setup(t)
		other := add(t, g, "other", newOp("pass", []datatype.DataType{datatype.Color}, datatype.Color))
		connect(t, g, g.Output(src, 0), g.Input(other, 0))
		assert.Panics(t, func() {
			g.RelinkConnections(g.Input(proxy, 0), g.Input(other, 0), false, -1, false)
		})
	})
}

func TestRelinkConnections_Autoconnect(t *testing.T) {
	t.Run("synthesizes a constant of the source type", func(t *testing.T) {
		g := New(WithConstants(constants))
		proxyOp := newOp("group", []datatype.DataType{datatype.Value, datatype.Color})
		proxyOp.sig.Inputs[0].Default = operation.Color{0.25}
		proxyOp.sig.Inputs[1].Default = operation.Color{0.1, 0.2, 0.3, 1}
		proxy := add(t, g, "proxy", proxyOp)
		inner := add(t, g, "inner", newOp("pass", []datatype.DataType{datatype.Value}, datatype.Value))

		g.DetermineActualDataType(g.Input(proxy, 0))
		g.RelinkConnections(g.Input(proxy, 0), g.Input(inner, 0), true, -1, false)

		conn, ok := g.ConnectionOf(g.Input(inner, 0))
		require.True(t, ok)
		s, _ := g.Socket(conn.From)
		op, _ := g.Operation(s.Operation)
		c, ok := op.(*constOp)
		require.True(t, ok)
		assert.Equal(t, datatype.Value, c.dt)
		assert.Equal(t, operation.Color{0.25}, c.value)
	})

	t.Run("editor index selects the default", func(t *testing.T) {
		g := New(WithConstants(constants))
		proxyOp := newOp("group", []datatype.DataType{datatype.Color, datatype.Color})
		proxyOp.sig.Inputs[1].Default = operation.Color{0.1, 0.2, 0.3, 1}
		proxy := add(t, g, "proxy", proxyOp)
		inner := add(t, g, "inner", newOp("pass", []datatype.DataType{datatype.Color}, datatype.Color))

		g.DetermineActualDataType(g.Input(proxy, 0))
		g.RelinkConnections(g.Input(proxy, 0), g.Input(inner, 0), true, 1, true)

		conn, ok := g.ConnectionOf(g.Input(inner, 0))
		require.True(t, ok)
		s, _ := g.Socket(conn.From)
		op, _ := g.Operation(s.Operation)
		assert.Equal(t, operation.Color{0.1, 0.2, 0.3, 1}, op.(*constOp).value)
		assert.Equal(t, datatype.Color, op.(*constOp).dt)
	})

	t.Run("unknown type falls through to color", func(t *testing.T) {
		var logs bytes.Buffer
		g := New(WithConstants(constants), WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
		proxy := add(t, g, "proxy", newOp("group", []datatype.DataType{datatype.Value}))
		inner := add(t, g, "inner", newOp("pass", []datatype.DataType{datatype.Value}, datatype.Value))

		g.RelinkConnections(g.Input(proxy, 0), g.Input(inner, 0), true, -1, false)

		conn, ok := g.ConnectionOf(g.Input(inner, 0))
		require.True(t, ok)
		s, _ := g.Socket(conn.From)
		op, _ := g.Operation(s.Operation)
		assert.Equal(t, datatype.Color, op.(*constOp).dt)
		assert.Contains(t, logs.String(), "unknown data type")
	})

	t.Run("without autoconnect nothing happens", func(t *testing.T) {
		g := New(WithConstants(constants))
		proxy := add(t, g, "proxy", newOp("group", []datatype.DataType{datatype.Color}))
		inner := add(t, g, "inner", newOp("pass", []datatype.DataType{datatype.Color}, datatype.Color))

		g.RelinkConnections(g.Input(proxy, 0), g.Input(inner, 0), false, -1, false)
		assert.False(t, g.IsConnected(g.Input(inner, 0)))
		assert.Equal(t, 2, g.Len())
	})

	t.Run("nil graph panics", func(t *testing.T) {
		var g *Graph
		assert.Panics(t, func() { g.RelinkConnections(0, 1, true, -1, false) })
	})
}

func TestRelinkOutputConnections(t *testing.T) {
	g := New()
	proxy := add(t, g, "proxy", newOp("group", nil, datatype.Color))
	inner := add(t, g, "inner", newOp("src", nil, datatype.Color))
	b := add(t, g, "b", newOp("pass", []datatype.DataType{datatype.Color}, datatype.Color))
	c := add(t, g, "c", newOp("pass", []datatype.DataType{datatype.Color}, datatype.Color))
	connect(t, g, g.Output(proxy, 0), g.Input(b, 0))
	connect(t, g, g.Output(proxy, 0), g.Input(c, 0))

	g.RelinkOutputConnections(g.Output(proxy, 0), g.Output(inner, 0))

	assert.False(t, g.IsConnected(g.Output(proxy, 0)))
	assert.Len(t, g.ConnectionsOf(g.Output(inner, 0)), 2)
	conn, ok := g.ConnectionOf(g.Input(c, 0))
	require.True(t, ok)
	assert.Equal(t, g.Output(inner, 0), conn.From)
}

func TestRemoveOperation(t *testing.T) {
	g := New()
	a := add(t, g, "a", newOp("src", nil, datatype.Color))
	b := add(t, g, "b", newOp("pass", []datatype.DataType{datatype.Color, datatype.Color}, datatype.Color))
	c := add(t, g, "c", newOp("pass", []datatype.DataType{datatype.Color}, datatype.Color))
	connect(t, g, g.Output(a, 0), g.Input(b, 0))
	connect(t, g, g.Output(b, 0), g.Input(c, 0))

	owned := g.NewGroupOutput("owned", datatype.Color)
	shared := g.NewGroupOutput("shared", datatype.Color)
	g.SetGroupOutput(g.Input(b, 0), owned, false)
	g.SetGroupOutput(g.Input(b, 1), shared, true)

	require.NoError(t, g.RemoveOperation(b))

	assert.Equal(t, 2, g.Len())
	assert.Equal(t, 0, countConnections(g))
	assert.False(t, g.IsConnected(g.Output(a, 0)))
	assert.False(t, g.IsConnected(g.Input(c, 0)))
	_, ok := g.Socket(owned)
	assert.False(t, ok, "group output owned by the input is freed")
	_, ok = g.Socket(shared)
	assert.True(t, ok, "group output inside the group stays")
	_, ok = g.Lookup("b")
	assert.False(t, ok)
	assert.ErrorIs(t, g.RemoveOperation(b), ErrUnknownOperation)
}

func TestResolveDataTypes(t *testing.T) {
	tests := []struct {
		name      string
		source    datatype.DataType
		supported datatype.DataType
		want      datatype.DataType
	}{
		{"exact match", datatype.Color, datatype.Color, datatype.Color},
		{"value prefers color", datatype.Value, datatype.Color | datatype.Vector, datatype.Color},
		{"value to vector", datatype.Value, datatype.Vector, datatype.Vector},
		{"vector prefers color", datatype.Vector, datatype.Color | datatype.Value, datatype.Color},
		{"vector to value", datatype.Vector, datatype.Value, datatype.Value},
		{"color prefers vector", datatype.Color, datatype.Vector | datatype.Value, datatype.Vector},
		{"color to value", datatype.Color, datatype.Value, datatype.Value},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			src := add(t, g, "src", newOp("src", nil, tt.source))
			dstOp := newOp("dst", []datatype.DataType{tt.supported}, datatype.Color)
			dst := add(t, g, "dst", dstOp)
			connect(t, g, g.Output(src, 0), g.Input(dst, 0))

			require.NoError(t, g.ResolveDataTypes())
			assert.Equal(t, tt.want, g.ActualType(g.Input(dst, 0)))
			assert.Equal(t, tt.want, dstOp.notified[0])

			require.NoError(t, g.ResolveDataTypes())
			assert.Equal(t, tt.want, g.ActualType(g.Input(dst, 0)), "resolution is idempotent")
		})
	}
}

func TestResolveDataTypes_UnconnectedAndDerivedOutputs(t *testing.T) {
	g := New()
	src := add(t, g, "src", newOp("src", nil, datatype.Value))
	mix := add(t, g, "mix", newOp("mix",
		[]datatype.DataType{datatype.Value | datatype.Color, datatype.Vector | datatype.Value},
		datatype.Value|datatype.Color))
	connect(t, g, g.Output(src, 0), g.Input(mix, 0))

	require.NoError(t, g.ResolveDataTypes())
	assert.Equal(t, datatype.Value, g.ActualType(g.Input(mix, 0)))
	assert.Equal(t, datatype.Vector, g.ActualType(g.Input(mix, 1)), "unconnected input requests color")
	assert.Equal(t, datatype.Value, g.ActualType(g.Output(mix, 0)), "output follows the first input")
}

func TestConvertToSupportedDataType_LogsDiagnostic(t *testing.T) {
	var logs bytes.Buffer
	g := New(WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	op := add(t, g, "op", newOp("op", []datatype.DataType{datatype.Value}))

	got := g.ConvertToSupportedDataType(g.Input(op, 0), datatype.Unknown)
	assert.Equal(t, datatype.Value, got)
	assert.Contains(t, logs.String(), "no conversion to a supported data type")
}

func TestDetermineActualDataType_GroupOutput(t *testing.T) {
	g := New()
	proxy := add(t, g, "proxy", newOp("group", []datatype.DataType{datatype.Vector}))
	dstOp := newOp("dst", []datatype.DataType{datatype.Color | datatype.Vector}, datatype.Color)
	dst := add(t, g, "dst", dstOp)
	out := g.NewGroupOutput("group", datatype.Unknown)
	g.SetGroupOutput(g.Input(proxy, 0), out, false)
	connect(t, g, out, g.Input(dst, 0))

	g.DetermineActualDataType(g.Input(proxy, 0))

	assert.Equal(t, datatype.Vector, g.ActualType(g.Input(proxy, 0)))
	assert.Equal(t, datatype.Vector, g.ActualType(out))
	assert.Equal(t, datatype.Vector, dstOp.notified[0])
}

func TestInsertConversions(t *testing.T) {
	g := New()
	src := add(t, g, "src", newOp("src", nil, datatype.Color))
	dst := add(t, g, "dst", newOp("dst", []datatype.DataType{datatype.Value}, datatype.Value))
	connect(t, g, g.Output(src, 0), g.Input(dst, 0))
	require.NoError(t, g.ResolveDataTypes())

	var calls [][2]datatype.DataType
	factory := func(from, to datatype.DataType) operation.Operation {
		calls = append(calls, [2]datatype.DataType{from, to})
		return newOp("convert", []datatype.DataType{from}, to)
	}

	n, err := g.InsertConversions(factory)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, [][2]datatype.DataType{{datatype.Color, datatype.Value}}, calls)
	assert.Equal(t, 3, g.Len())

	conn, ok := g.ConnectionOf(g.Input(dst, 0))
	require.True(t, ok)
	s, _ := g.Socket(conn.From)
	op, _ := g.Operation(s.Operation)
	assert.Equal(t, "convert", op.Kind())
	assert.Equal(t, datatype.Color, g.ActualType(g.Input(s.Operation, 0)))
	assert.Equal(t, datatype.Value, s.Actual)

	n, err = g.InsertConversions(factory)
	require.NoError(t, err)
	assert.Zero(t, n, "matching types need no conversion")
}

func TestDetermineResolutions(t *testing.T) {
	g := New()
	src := &sizedOp{fakeOp: *newOp("image", nil, datatype.Color), natural: operation.Resolution{Width: 64, Height: 32}}
	srcID := add(t, g, "src", src)
	left := add(t, g, "left", newOp("pass", []datatype.DataType{datatype.Color}, datatype.Color))
	right := add(t, g, "right", newOp("pass", []datatype.DataType{datatype.Color}, datatype.Color))
	mix := add(t, g, "mix", newOp("mix", []datatype.DataType{datatype.Color, datatype.Color, datatype.Value}, datatype.Color))
	connect(t, g, g.Output(srcID, 0), g.Input(left, 0))
	connect(t, g, g.Output(srcID, 0), g.Input(right, 0))
	connect(t, g, g.Output(left, 0), g.Input(mix, 0))
	connect(t, g, g.Output(right, 0), g.Input(mix, 1))
	require.NoError(t, g.MarkOutput(g.Output(mix, 0)))

	res := g.DetermineResolutions(operation.Resolution{Width: 100, Height: 100})

	want := operation.Resolution{Width: 64, Height: 32}
	for _, id := range []OperationID{srcID, left, right, mix} {
		assert.Equal(t, want, res.Of(id), g.Name(id))
	}
	assert.Equal(t, 1, src.runs, "shared upstream operation resolved once")
	for _, in := range []SocketID{g.Input(left, 0), g.Input(right, 0), g.Input(mix, 0), g.Input(mix, 1)} {
		assert.Equal(t, 1, res.Visits(in))
	}
	assert.Zero(t, res.Visits(g.Input(mix, 2)), "unconnected input is not resolved")
	_, ok := res.Input(g.Input(mix, 2))
	assert.False(t, ok)

	again := g.DetermineResolutions(operation.Resolution{Width: 100, Height: 100})
	for _, id := range []OperationID{srcID, left, right, mix} {
		assert.Equal(t, res.Of(id), again.Of(id), g.Name(id))
	}
	for _, in := range []SocketID{g.Input(left, 0), g.Input(right, 0), g.Input(mix, 0), g.Input(mix, 1)} {
		first, ok := res.Input(in)
		require.True(t, ok)
		second, ok := again.Input(in)
		require.True(t, ok)
		assert.Equal(t, first, second)
		assert.Equal(t, 1, again.Visits(in), "each snapshot visits an input once")
	}
}

func TestValidate(t *testing.T) {
	g := New()
	assert.ErrorIs(t, g.Validate(), ErrNoOutputs)

	a := add(t, g, "a", newOp("src", nil, datatype.Color))
	b := add(t, g, "b", newOp("mix", []datatype.DataType{datatype.Color, datatype.Color}, datatype.Color))
	add(t, g, "unused", newOp("pass", []datatype.DataType{datatype.Color}, datatype.Color))
	connect(t, g, g.Output(a, 0), g.Input(b, 0))
	require.NoError(t, g.MarkOutput(g.Output(b, 0)))

	err := g.Validate()
	require.ErrorIs(t, err, ErrUnconnectedInput)
	assert.Contains(t, err.Error(), "b.b")
	assert.NotContains(t, err.Error(), "unused", "operations not feeding an output are ignored")

	connect(t, g, g.Output(a, 0), g.Input(b, 1))
	assert.NoError(t, g.Validate())
}

func TestFinalize(t *testing.T) {
	g := New()
	c := add(t, g, "c", newOp("pass", []datatype.DataType{datatype.Color}, datatype.Color))
	b := add(t, g, "b", newOp("pass", []datatype.DataType{datatype.Color}, datatype.Color))
	a := add(t, g, "a", newOp("src", nil, datatype.Color))
	add(t, g, "orphan", newOp("src", nil, datatype.Color))
	connect(t, g, g.Output(a, 0), g.Input(b, 0))
	connect(t, g, g.Output(b, 0), g.Input(c, 0))
	require.NoError(t, g.MarkOutput(g.Output(c, 0)))

	assert.Panics(t, func() { g.Order() })
	require.NoError(t, g.Finalize())

	assert.Equal(t, []OperationID{a, b, c}, g.Order())
	assert.Equal(t, []OperationID{b}, g.Upstream(c))
	assert.Equal(t, []OperationID{c}, g.Downstream(b))
	id, ok := g.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, b, id)

	_, err := g.AddOperation("late", newOp("src", nil, datatype.Color))
	assert.ErrorIs(t, err, ErrFinalized)
	_, err = g.Connect(g.Output(a, 0), g.Input(b, 0))
	assert.ErrorIs(t, err, ErrFinalized)
}

func TestOperations_Iterator(t *testing.T) {
	g := New()
	b := add(t, g, "b", newOp("pass", []datatype.DataType{datatype.Color}, datatype.Color))
	a := add(t, g, "a", newOp("src", nil, datatype.Color))
	connect(t, g, g.Output(a, 0), g.Input(b, 0))

	collect := func() []OperationID {
		var ids []OperationID
		for id := range g.Operations() {
			ids = append(ids, id)
		}
		return ids
	}
	assert.Equal(t, []OperationID{a, b}, collect())
	assert.Equal(t, collect(), collect(), "the sequence is restartable")

	var first []OperationID
	for id := range g.Operations() {
		first = append(first, id)
		break
	}
	assert.Equal(t, []OperationID{a}, first)
}

func TestDetectCycles(t *testing.T) {
	g := New()
	a := add(t, g, "a", newOp("pass", []datatype.DataType{datatype.Color}, datatype.Color))
	b := add(t, g, "b", newOp("pass", []datatype.DataType{datatype.Color}, datatype.Color))
	connect(t, g, g.Output(a, 0), g.Input(b, 0))
	require.NoError(t, g.DetectCycles())

	// Relinking does not check for cycles; validation does.
	p := add(t, g, "p", newOp("pass", []datatype.DataType{datatype.Color}, datatype.Color))
	connect(t, g, g.Output(b, 0), g.Input(p, 0))
	g.RelinkConnections(g.Input(p, 0), g.Input(a, 0), false, -1, false)

	assert.ErrorIs(t, g.DetectCycles(), ErrCycle)
	assert.ErrorIs(t, g.ResolveDataTypes(), ErrCycle)
}
