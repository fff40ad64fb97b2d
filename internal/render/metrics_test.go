package render_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alisw/ci-overview/internal/domain/model"
	"github.com/alisw/ci-overview/internal/render"
)

var renderNow = time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

// fixture returns a catalog with two targets and the classified statuses for
// one rendering cycle. The gadgets target has no fetch result at all, the
// widgets target has one reported and one empty check.
func fixture() (*model.Catalog, render.Statuses) {
	cat := model.NewCatalog()
	cat.Add(model.CheckDefinition{
		ShortName: "unit", Name: "unit-gcc",
		Repository: "acme/widgets", Branch: "main", CIName: "unit-ci",
	})
	cat.Add(model.CheckDefinition{
		ShortName: "lint", Name: "lint",
		Repository: "acme/widgets", Branch: "main", CIName: "lint-ci",
	})
	cat.Add(model.CheckDefinition{
		ShortName: "smoke", Name: "smoke",
		Repository: "acme/gadgets", Branch: "dev", CIName: "smoke-ci",
	})

	widgets := model.Target{Repository: "acme/widgets", Branch: "main"}
	statuses := render.Statuses{
		widgets: {
			"unit-gcc": {
				{
					Check: "unit-gcc", State: model.StateSuccess,
					CreatedAt:  renderNow.Add(-time.Hour),
					Repository: "acme/widgets", PullNumber: 12,
					TargetURL: "https://ci.example.org/12",
				},
				{
					Check: "unit-gcc", State: model.StateFailure,
					CreatedAt:  renderNow.Add(-48 * time.Hour),
					Repository: "acme/widgets", PullNumber: 7,
				},
				{
					Check: "unit-gcc", State: model.StateExpected,
					CreatedAt:  renderNow,
					Repository: "acme/widgets", PullNumber: 3,
				},
			},
			"lint": nil,
		},
	}
	return cat, statuses
}

func TestMetricsOutput(t *testing.T) {
	cat, statuses := fixture()
	var buf bytes.Buffer
	opts := render.Options{Now: renderNow, RecentWindow: 24 * time.Hour, DisplayWidth: 80}

	require.NoError(t, render.Overview(render.NewMetrics(&buf, opts), cat, statuses, opts))

	want := `# HELP ci_check_statuses Open non-draft pull requests per check and state.
# TYPE ci_check_statuses gauge
ci_check_statuses{repository="acme/widgets",branch="main",check="lint",state="EXPECTED"} 0
ci_check_statuses{repository="acme/widgets",branch="main",check="lint",state="PENDING"} 0
ci_check_statuses{repository="acme/widgets",branch="main",check="lint",state="SUCCESS"} 0
ci_check_statuses{repository="acme/widgets",branch="main",check="lint",state="FAILURE"} 0
ci_check_statuses{repository="acme/widgets",branch="main",check="lint",state="ERROR"} 0
ci_check_statuses{repository="acme/widgets",branch="main",check="unit-gcc",state="EXPECTED"} 1
ci_check_statuses{repository="acme/widgets",branch="main",check="unit-gcc",state="PENDING"} 0
ci_check_statuses{repository="acme/widgets",branch="main",check="unit-gcc",state="SUCCESS"} 1
ci_check_statuses{repository="acme/widgets",branch="main",check="unit-gcc",state="FAILURE"} 1
ci_check_statuses{repository="acme/widgets",branch="main",check="unit-gcc",state="ERROR"} 0
# HELP ci_overview_generated_timestamp_seconds When this overview was generated.
# TYPE ci_overview_generated_timestamp_seconds gauge
ci_overview_generated_timestamp_seconds ` + "1787486400\n"

	assert.Equal(t, want, buf.String())
}

func TestMetricsSkipsUnfetchedTargets(t *testing.T) {
	cat, statuses := fixture()
	var buf bytes.Buffer
	opts := render.Options{Now: renderNow}

	require.NoError(t, render.Overview(render.NewMetrics(&buf, opts), cat, statuses, opts))

	// acme/gadgets failed to fetch this cycle; it must not appear as a
	// zero-valued series.
	assert.NotContains(t, buf.String(), "acme/gadgets")
}
