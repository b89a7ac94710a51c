package compiler

import (
	"context"
	"go/types"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"

	"github.com/syssam/autogen/compiler/diag"
	"github.com/syssam/autogen/compiler/gen"
)

func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

const orderErrors = `<errors>
  <codeBase>ORD</codeBase>
  <error code="1001" name="NotFound">order {0} not found</error>
  <error code="1002" name="Closed">order is closed</error>
</errors>
`

const orderErrorsFr = `<errors>
  <lang>fr</lang>
  <codeBase>ORD</codeBase>
  <error code="1001" name="NotFound">commande {0} introuvable</error>
  <error code="1002" name="Closed">commande close</error>
</errors>
`

func errorsProject(t *testing.T) string {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"go.mod":                      "module example.com/shop\n\ngo 1.24\n",
		"errors/order_errors.xml":     orderErrors,
		"errors/order_errors.fr.xml":  orderErrorsFr,
		"errors/payment.xml":          `<errors><codeBase>PAY</codeBase><error code="1" name="Declined">declined</error></errors>`,
		"errors/broken.xml":           `<errors><codeBase>X</codeBase><error code="1" name="A">a</errors>`,
		"errors/unrelated/config.xml": `<settings><debug>true</debug></settings>`,
	})
	return dir
}

func errorsConfig(dir string) *gen.Config {
	cfg := gen.DefaultConfig()
	cfg.ProjectDir = dir
	cfg.Pipelines = []gen.Pipeline{gen.PipelineErrors}
	return cfg
}

func codes(ds []diag.Diagnostic) []string {
	var out []string
	for _, d := range ds {
		out = append(out, d.Code)
	}
	return out
}

func TestGenerateErrorTables(t *testing.T) {
	dir := errorsProject(t)

	report, err := Generate(context.Background(), errorsConfig(dir))
	require.NoError(t, err)

	t.Run("one malformed file gives one diagnostic", func(t *testing.T) {
		errs := 0
		for _, d := range report.Diagnostics {
			if d.Severity == diag.Error {
				errs++
				assert.Equal(t, diag.CodeInvalidXML, d.Code)
				assert.Equal(t, filepath.Join(dir, "errors", "broken.xml"), d.File)
			}
		}
		assert.Equal(t, 1, errs)
		assert.True(t, report.HasErrors())
		assert.Contains(t, codes(report.Diagnostics), diag.CodeNotDefinition)
	})

	t.Run("valid files are generated", func(t *testing.T) {
		want := []string{
			"errorcodes/shop_order_errors.gen.go",
			"errorcodes/shop_payment.gen.go",
			"resources/OrderErrorsResources.fr.yaml",
			"resources/OrderErrorsResources.yaml",
			"resources/PaymentResources.yaml",
			"resources/shop_order_errors_resources.gen.go",
			"resources/shop_payment_resources.gen.go",
		}
		var got []string
		for _, p := range report.Written {
			rel, err := filepath.Rel(dir, p)
			require.NoError(t, err)
			got = append(got, filepath.ToSlash(rel))
		}
		assert.Equal(t, want, got)

		src, err := os.ReadFile(filepath.Join(dir, "errorcodes", "shop_order_errors.gen.go"))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(src), "// "+gen.DefaultHeader))
		assert.Contains(t, string(src), `autogen.NewError("ORD1002", resources.OrderErrorsResources.Closed())`)

		bundle, err := os.ReadFile(filepath.Join(dir, "resources", "OrderErrorsResources.fr.yaml"))
		require.NoError(t, err)
		assert.Contains(t, string(bundle), "commande close")
	})

	t.Run("unchanged inputs are skipped", func(t *testing.T) {
		again, err := Generate(context.Background(), errorsConfig(dir))
		require.NoError(t, err)
		assert.Empty(t, again.Written)
		assert.Equal(t, 3, again.Skipped)
		assert.NotEqual(t, report.PassID, again.PassID)
	})

	t.Run("regeneration without cache is byte-identical", func(t *testing.T) {
		before, err := os.ReadFile(filepath.Join(dir, "resources", "shop_order_errors_resources.gen.go"))
		require.NoError(t, err)

		cfg := errorsConfig(dir)
		cfg.DisableCache = true
		again, err := Generate(context.Background(), cfg)
		require.NoError(t, err)
		assert.Empty(t, again.Written)
		assert.Len(t, again.Unchanged, 7)

		after, err := os.ReadFile(filepath.Join(dir, "resources", "shop_order_errors_resources.gen.go"))
		require.NoError(t, err)
		assert.Equal(t, string(before), string(after))
	})

	t.Run("outputs of a removed definition are deleted", func(t *testing.T) {
		require.NoError(t, os.Remove(filepath.Join(dir, "errors", "order_errors.fr.xml")))
		again, err := Generate(context.Background(), errorsConfig(dir))
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "resources", "OrderErrorsResources.fr.yaml")}, again.Removed)
		assert.NoFileExists(t, filepath.Join(dir, "resources", "OrderErrorsResources.fr.yaml"))
	})

	t.Run("a definition that stops loading keeps its outputs", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "errors", "payment.xml"), []byte("<errors>"), 0o644))
		again, err := Generate(context.Background(), errorsConfig(dir))
		require.NoError(t, err)
		assert.Empty(t, again.Removed)
		assert.FileExists(t, filepath.Join(dir, "errorcodes", "shop_payment.gen.go"))
	})
}

func TestGenerateInvalidDefinition(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"go.mod": "module example.com/shop\n\ngo 1.24\n",
		"errors/order_errors.xml": `<errors>
  <lang>not a tag</lang>
  <error code="1" name="A">a</error>
  <error name="B">b</error>
</errors>`,
	})

	report, err := Generate(context.Background(), errorsConfig(dir))
	require.NoError(t, err)
	assert.Empty(t, report.Written)
	assert.ElementsMatch(t,
		[]string{diag.CodeInvalidDefinition, diag.CodeInvalidLanguage, diag.CodeInvalidDefinition},
		codes(report.Diagnostics))
}

func TestGenerateProperties(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"go.mod": "module example.com/shop\n\ngo 1.24\n",
		"model/order.go": `package model

import "time"

//autogen:observable
type Order struct {
	changes int

	//autogen:property
	_status string

	//autogen:property "Placed" "time the order was placed."
	placedAt time.Time

	//autogen:property
	tags []string
}

func (o *Order) PropertyChanged() { o.changes++ }

//autogen:observable
type Plain struct {
	//autogen:property
	_name string
}
`,
	})
	cfg := gen.DefaultConfig()
	cfg.ProjectDir = dir
	cfg.Pipelines = []gen.Pipeline{gen.PipelineProperties}

	report, err := Generate(context.Background(), cfg)
	require.NoError(t, err)

	out := filepath.Join(dir, "model", "model_order.gen.go")
	assert.Equal(t, []string{out}, report.Written)
	src, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(src), "func (o *Order) Status() string")
	assert.Contains(t, string(src), "// Placed returns time the order was placed.")
	assert.Contains(t, string(src), "if reflect.DeepEqual(o.tags, v)")

	warnings := 0
	for _, d := range report.Diagnostics {
		if d.Code == diag.CodeMalformedMarker {
			warnings++
			assert.Equal(t, diag.Warning, d.Severity)
			assert.Contains(t, d.Message, "Plain")
		}
	}
	assert.Equal(t, 1, warnings)
	assert.False(t, report.HasErrors())
}

func TestPrepare(t *testing.T) {
	t.Run("module is inferred from go.mod", func(t *testing.T) {
		dir := t.TempDir()
		writeTree(t, dir, map[string]string{"go.mod": "module example.com/shop/v2\n", "sub/x.txt": ""})
		cfg := gen.DefaultConfig()
		cfg.ProjectDir = filepath.Join(dir, "sub")
		require.NoError(t, Prepare(cfg))
		assert.Equal(t, "example.com/shop/v2", cfg.Module)
		assert.True(t, filepath.IsAbs(cfg.ProjectDir))
	})

	t.Run("explicit module wins", func(t *testing.T) {
		dir := t.TempDir()
		writeTree(t, dir, map[string]string{"go.mod": "module example.com/shop\n"})
		cfg := gen.DefaultConfig()
		cfg.ProjectDir = dir
		cfg.Module = "example.com/other"
		require.NoError(t, Prepare(cfg))
		assert.Equal(t, "example.com/other", cfg.Module)
	})

	t.Run("no module", func(t *testing.T) {
		cfg := gen.DefaultConfig()
		cfg.ProjectDir = t.TempDir()
		err := Prepare(cfg)
		require.Error(t, err)
		assert.True(t, gen.IsConfigError(err))
	})
}

func TestLoadModels(t *testing.T) {
	dir := errorsProject(t)
	var bag diag.Bag
	models, err := Load(context.Background(), errorsConfig(dir), &bag)
	require.NoError(t, err)

	assert.Nil(t, models.Packages)
	assert.Len(t, models.Tables, 3)
	assert.Equal(t, []string{"def:errors/broken.xml"}, models.Failed)
	table := models.Tables["def:errors/order_errors.fr.xml"]
	require.NotNil(t, table)
	assert.Equal(t, "fr", table.Language)
	assert.Equal(t, "example.com/shop", table.Assembly)
}

// moduleProject creates a project directory inside this module so that
// generated code resolves the runtime packages from the working tree. It
// returns the directory and its import path.
func moduleProject(t *testing.T, files map[string]string) (string, string) {
	t.Helper()
	require.NoError(t, os.MkdirAll("testdata", 0o755))
	t.Cleanup(func() { os.Remove("testdata") })
	dir, err := os.MkdirTemp("testdata", "project")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	writeTree(t, dir, files)

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	return abs, "github.com/syssam/autogen/compiler/" + filepath.ToSlash(dir)
}

const vehicleSource = `package model

import (
	"time"

	"github.com/syssam/autogen"
)

//autogen:observable
type Vehicle struct {
	autogen.ChangeTracker

	//autogen:property
	_speed int

	//autogen:property "id" "identifier of the vehicle."
	ident string

	//autogen:property
	_stops []time.Time
}

//autogen:observable
type Value[T any] struct {
	autogen.ChangeTracker

	//autogen:property
	_val T
}
`

func TestGeneratedCodeBuilds(t *testing.T) {
	dir, module := moduleProject(t, map[string]string{
		"model/vehicle.go": vehicleSource,
		"errors/fleet_errors.xml": `<errors>
  <codeBase>FLT</codeBase>
  <error code="1" name="Grounded">vehicle {0} is grounded</error>
  <error code="2" name="tooHeavy">vehicle is over its weight limit</error>
</errors>`,
		"errors/fleet_errors.fr.xml": `<errors>
  <lang>fr</lang>
  <codeBase>FLT</codeBase>
  <error code="1" name="Grounded">le véhicule {0} est immobilisé</error>
  <error code="2" name="tooHeavy">le véhicule est trop lourd</error>
</errors>`,
	})
	cfg := gen.DefaultConfig()
	cfg.ProjectDir = dir
	cfg.Module = module
	cfg.DisableCache = true

	report, err := Generate(context.Background(), cfg)
	require.NoError(t, err)
	require.False(t, report.HasErrors(), "%v", report.Diagnostics)
	require.Len(t, report.Written, 6)

	pkgs, err := packages.Load(&packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedEmbedFiles |
			packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo,
		Dir: dir,
	}, "./...")
	require.NoError(t, err)

	byPath := make(map[string]*packages.Package)
	for _, pkg := range pkgs {
		byPath[pkg.PkgPath] = pkg
		for _, e := range pkg.Errors {
			t.Errorf("%s: %v", pkg.PkgPath, e)
		}
	}
	require.Contains(t, byPath, module+"/model")
	require.Contains(t, byPath, module+"/errorcodes")
	require.Contains(t, byPath, module+"/resources")
	assert.Len(t, byPath[module+"/resources"].EmbedFiles, 2)

	vehicle := byPath[module+"/model"].Types.Scope().Lookup("Vehicle")
	require.NotNil(t, vehicle)
	mset := types.NewMethodSet(types.NewPointer(vehicle.Type()))
	for _, name := range []string{"Speed", "setSpeed", "id", "setid", "Stops", "setStops"} {
		assert.NotNil(t, mset.Lookup(vehicle.Pkg(), name), name)
	}
}
