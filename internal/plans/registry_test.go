package plans

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default()

	require.True(t, r.Exists(DefaultPlanID))
	plan := r.Get(DefaultPlanID)
	require.NotNil(t, plan)
	assert.Equal(t, int64(100000), plan.Amount)
	assert.Equal(t, "pkr", plan.Currency)
	assert.Equal(t, "month", plan.Interval)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.json")
	content := `{"plans":[
		{"id":"monthly_pkr_1000","name":"Premium","amount":100000,"currency":"pkr","interval":"month"},
		{"id":"yearly_pkr_10000","name":"Premium Yearly","amount":1000000,"currency":"pkr","interval":"year"}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	r, err := LoadFromFile(path)
	require.NoError(t, err)

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "monthly_pkr_1000", all[0].ID)
	assert.Equal(t, "yearly_pkr_10000", all[1].ID)
	assert.True(t, r.Exists("yearly_pkr_10000"))
	assert.Nil(t, r.Get("missing"))
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestRegisterOverridesInPlace(t *testing.T) {
	r := Default()
	r.Register(&Plan{ID: DefaultPlanID, Name: "Renamed", Amount: 200000})

	all := r.All()
	require.Len(t, all, 1)
	assert.Equal(t, "Renamed", all[0].Name)
}
