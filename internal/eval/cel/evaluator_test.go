package cel

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vars() map[string]interface{} {
	return map[string]interface{}{
		"template": map[string]interface{}{
			"name":      "Infobox person",
			"params":    map[string]string{"born": "1900", "name": "Ada"},
			"anonymous": []string{"left"},
		},
		"page": map[string]interface{}{
			"title":  "Ada Lovelace",
			"rev_id": int64(42),
		},
	}
}

func TestEvaluateBool(t *testing.T) {
	e := NewEvaluator()
	ctx := context.Background()

	tests := []struct {
		expr string
		want bool
	}{
		{`template.name == "Infobox person"`, true},
		{`has(template.params.born)`, true},
		{`!has(template.params.died)`, true},
		{`template.params.born == "1900" && page.rev_id > 40`, true},
		{`"left" in template.anonymous`, true},
		{`page.title.startsWith("Ada")`, true},
		{`size(template.params) == 3`, false},
		{`template.params["name"].matches("^A")`, true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := e.EvaluateBool(ctx, tt.expr, vars())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateNonBool(t *testing.T) {
	e := NewEvaluator()

	result, err := e.Evaluate(context.Background(), `template.params.born`, vars())
	require.NoError(t, err)
	assert.Equal(t, "1900", result)

	_, err = e.EvaluateBool(context.Background(), `template.params.born`, vars())
	assert.Error(t, err)
}

func TestEvaluateErrors(t *testing.T) {
	e := NewEvaluator()
	ctx := context.Background()

	_, err := e.Evaluate(ctx, `template.name ==`, vars())
	assert.ErrorContains(t, err, "failed to compile expression")

	_, err = e.Evaluate(ctx, `unknown.field == 1`, vars())
	assert.Error(t, err)

	_, err = e.Evaluate(ctx, `template.params.died == "x"`, vars())
	assert.ErrorContains(t, err, "evaluation failed")
}

func TestValidateExpression(t *testing.T) {
	e := NewEvaluator()

	assert.NoError(t, e.ValidateExpression(`template.name == "X"`))
	assert.NoError(t, e.ValidateExpression(`template.params.flag`))
	assert.Error(t, e.ValidateExpression(`1 + 2`))
	assert.Error(t, e.ValidateExpression(`template.name ==`))
}

func TestProgramCache(t *testing.T) {
	e := NewEvaluator()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.EvaluateBool(ctx, `page.rev_id == 42`, vars())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, e.CacheSize())

	e.ClearCache()
	assert.Equal(t, 0, e.CacheSize())
}
