package naming

import (
	"testing"

	"github.com/born-ml/tailor/internal/nn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bag is a module with freely chosen children, used to build odd hierarchies.
type bag struct {
	params   []*nn.Parameter
	children []nn.Child
}

func (b *bag) Parameters() []*nn.Parameter { return b.params }
func (b *bag) Children() []nn.Child        { return b.children }

func TestBuild(t *testing.T) {
	fc1 := nn.NewLinear(4, 3, true)
	fc2 := nn.NewLinear(3, 2, false)
	features := nn.NewSequential(fc1, nn.NewReLU())
	root := nn.NewNamedSequential(
		nn.Child{Name: "features", Module: features},
		nn.Child{Name: "head", Module: fc2},
	)

	ix, err := Build(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"", "features", "features.0", "features.1", "head"}, ix.Names())
	assert.Equal(t, 5, ix.Len())

	m, ok := ix.Module("features.0")
	require.True(t, ok)
	assert.Same(t, fc1, m)

	p, ok := ix.Parameter("features.0")
	require.True(t, ok)
	assert.Same(t, fc1.Weight(), p)

	_, ok = ix.Parameter("features.1")
	assert.False(t, ok, "relu owns no parameter")
	_, ok = ix.Parameter("features")
	assert.False(t, ok, "container parameters are not inherited")

	path, ok := ix.PathOf(fc2)
	require.True(t, ok)
	assert.Equal(t, "head", path)

	ppath, ok := ix.ParameterPath(fc1.Bias())
	require.True(t, ok)
	assert.Equal(t, "features.0.bias", ppath)
	bias, ok := ix.ParameterAt("features.0.bias")
	require.True(t, ok)
	assert.Same(t, fc1.Bias(), bias)

	assert.Len(t, ix.Modules(), 5)
	assert.Len(t, ix.Parameters(), 2)
}

func TestBuildNil(t *testing.T) {
	_, err := Build(nil)
	assert.ErrorIs(t, err, ErrNilModule)

	var seq *nn.Sequential
	_, err = Build(seq)
	assert.ErrorIs(t, err, ErrNilModule)
}

func TestBuildSharedModule(t *testing.T) {
	shared := nn.NewLinear(2, 2, true)
	root := nn.NewSequential(shared, nn.NewReLU(), shared)

	ix, err := Build(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "0", "1"}, ix.Names())

	path, _ := ix.PathOf(shared)
	assert.Equal(t, "0", path)
}

func TestBuildInvalidNames(t *testing.T) {
	dup := &bag{children: []nn.Child{
		{Name: "a", Module: nn.NewReLU()},
		{Name: "a", Module: nn.NewTanh()},
	}}
	_, err := Build(dup)
	assert.ErrorIs(t, err, ErrDuplicateName)

	dotted := &bag{children: []nn.Child{{Name: "a.b", Module: nn.NewReLU()}}}
	_, err = Build(dotted)
	assert.ErrorIs(t, err, ErrInvalidName)

	withNil := &bag{children: []nn.Child{{Name: "gone", Module: nil}, {Name: "kept", Module: nn.NewReLU()}}}
	ix, err := Build(withNil)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "kept"}, ix.Names())
}

func TestCountParameters(t *testing.T) {
	fc := nn.NewLinear(4, 2, true)
	assert.Equal(t, 10, CountParameters(fc))

	assert.Equal(t, 0, CountParameters(nn.NewReLU()))
	assert.Equal(t, 0, CountParameters(nil))

	seq := nn.NewSequential(fc, nn.NewReLU(), nn.NewLinear(2, 3, false))
	assert.Equal(t, 16, CountParameters(seq))

	// A module reachable twice is counted once.
	assert.Equal(t, 10, CountParameters(nn.NewSequential(fc, fc)))

	// A parameter owned by two modules is counted once within one subtree.
	w := fc.Weight()
	a := &bag{params: []*nn.Parameter{w}}
	b := &bag{params: []*nn.Parameter{w}}
	root := &bag{children: []nn.Child{{Name: "a", Module: a}, {Name: "b", Module: b}}}
	assert.Equal(t, 8, CountParameters(root))
	assert.Equal(t, 8, CountParameters(a))
	assert.Equal(t, 8, CountParameters(b))
}

func TestBuildRepeatedActivations(t *testing.T) {
	relu1, relu2 := nn.NewReLU(), nn.NewReLU()
	root := nn.NewSequential(nn.NewLinear(4, 4, true), relu1, nn.NewLinear(4, 2, true), relu2)

	ix, err := Build(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "0", "1", "2", "3"}, ix.Names())

	m, ok := ix.Module("3")
	require.True(t, ok)
	assert.Same(t, relu2, m)

	path, ok := ix.PathOf(relu1)
	require.True(t, ok)
	assert.Equal(t, "1", path)
	path, ok = ix.PathOf(relu2)
	require.True(t, ok)
	assert.Equal(t, "3", path)
}

// marker has zero size: distinct instances may share an address.
type marker struct{}

func (*marker) Parameters() []*nn.Parameter { return nil }
func (*marker) Children() []nn.Child        { return nil }

// tagged is a module held by value, comparable by type but not by content.
type tagged struct {
	tag any
}

func (tagged) Parameters() []*nn.Parameter { return nil }
func (tagged) Children() []nn.Child        { return nil }

func TestBuildWithoutIdentity(t *testing.T) {
	root := &bag{children: []nn.Child{
		{Name: "a", Module: &marker{}},
		{Name: "b", Module: &marker{}},
		{Name: "c", Module: tagged{tag: []int{1}}},
		{Name: "d", Module: tagged{tag: []int{1}}},
	}}

	ix, err := Build(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "a", "b", "c", "d"}, ix.Names())

	_, ok := ix.PathOf(&marker{})
	assert.False(t, ok)
	_, ok = ix.PathOf(tagged{tag: []int{1}})
	assert.False(t, ok)
	assert.Zero(t, CountParameters(root))
}
