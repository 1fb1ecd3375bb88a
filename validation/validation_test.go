package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	var c Collector
	r := c.Report()
	assert.True(t, r.IsValid)
	assert.NotNil(t, r.Errors)
	assert.NotNil(t, r.Warnings)

	c.Warnf("line %d: gap", 3)
	r = c.Report()
	assert.True(t, r.IsValid, "warnings must not invalidate a report")
	assert.Equal(t, []string{"line 3: gap"}, r.Warnings)

	c.Errorf("line %d: broken", 4)
	assert.True(t, c.HasErrors())
	r = c.Report()
	assert.False(t, r.IsValid)
	assert.Equal(t, []string{"line 4: broken"}, r.Errors)
}

func TestReportJSON(t *testing.T) {
	var c Collector
	data, err := json.Marshal(c.Report())
	require.NoError(t, err)
	assert.JSONEq(t, `{"is_valid": true, "errors": [], "warnings": []}`, string(data))
}
