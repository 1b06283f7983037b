package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munakata1001/mitumorisyo/internal/model"
)

func row(modelNumber, name string, qty, unitPrice float64) model.LineItem {
	return model.LineItem{
		ID:          modelNumber + "/" + name,
		ModelNumber: modelNumber,
		Name:        name,
		Quantity:    qty,
		UnitPrice:   unitPrice,
		Price:       qty * unitPrice,
	}
}

func TestMergeFileResults_Dedup(t *testing.T) {
	a := row("A100", "Bolt", 5, 10)
	a.Weight = 1.5
	b := row("A100", "Bolt", 3, 12)

	got := MergeFileResults([][]model.LineItem{{a}, {b}})

	require.Len(t, got, 1)
	assert.Equal(t, 8.0, got[0].Quantity)
	assert.Equal(t, 86.0, got[0].Price)
	assert.Equal(t, 1.5, got[0].Weight)
	assert.Equal(t, 10.0, got[0].UnitPrice)
	assert.Equal(t, "A100/Bolt", got[0].ID)
}

func TestMergeFileResults_FirstSeenOrder(t *testing.T) {
	f1 := []model.LineItem{row("B", "x", 1, 1), row("A", "y", 1, 1)}
	f2 := []model.LineItem{row("C", "z", 1, 1), row("B", "x", 2, 1)}
	f3 := []model.LineItem{row("A", "y", 1, 1), row("D", "w", 1, 1)}

	got := MergeFileResults([][]model.LineItem{f1, f2, f3})

	require.Len(t, got, 4)
	keys := make([]string, 0, len(got))
	for _, r := range got {
		keys = append(keys, r.ModelNumber)
	}
	assert.Equal(t, []string{"B", "A", "C", "D"}, keys)
	assert.Equal(t, 3.0, got[0].Quantity)
}

func TestMergeFileResults_KeyIsStructured(t *testing.T) {
	// "A-B" + "C" and "A" + "B-C" would collide under a hyphen-joined key.
	got := MergeFileResults([][]model.LineItem{
		{row("A-B", "C", 1, 1)},
		{row("A", "B-C", 1, 1)},
	})

	assert.Len(t, got, 2)
}

func TestMergeFileResults_KeyIsCaseSensitive(t *testing.T) {
	got := MergeFileResults([][]model.LineItem{
		{row("a100", "bolt", 1, 1)},
		{row("A100", "Bolt", 1, 1)},
	})

	assert.Len(t, got, 2)
}

func TestMergeFileResults_DoesNotMutateInput(t *testing.T) {
	f1 := []model.LineItem{row("A", "x", 1, 10)}
	f2 := []model.LineItem{row("A", "x", 2, 10)}

	_ = MergeFileResults([][]model.LineItem{f1, f2})

	assert.Equal(t, 1.0, f1[0].Quantity)
	assert.Equal(t, 10.0, f1[0].Price)
}

func TestMergeFileResults_SingleAndEmpty(t *testing.T) {
	only := []model.LineItem{row("A", "x", 1, 1), row("A", "x", 1, 1)}

	assert.Equal(t, only, MergeFileResults([][]model.LineItem{only}))
	assert.Empty(t, MergeFileResults(nil))
}

func TestApplyPriceReference(t *testing.T) {
	merged := []model.LineItem{row("A100", "Bolt", 8, 10), row("B200", "Nut", 4, 3)}
	merged[1].Price = 99
	reference := []model.LineItem{
		row("A100", "Bolt", 1, 15),
		row("B200", "Nut", 1, 0),
	}

	got := ApplyPriceReference(merged, reference)

	require.Len(t, got, 2)
	assert.Equal(t, 15.0, got[0].UnitPrice)
	assert.Equal(t, 120.0, got[0].Price)
	assert.Equal(t, merged[1], got[1])
	assert.Equal(t, 10.0, merged[0].UnitPrice)
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"":                       ModeSingle,
		"個別解析":                   ModeSingle,
		"2-file":                 ModeTwoFile,
		"3ファイル統合":                ModeThreeFile,
		"2ファイル+価格参考":             ModePriceReference,
		"2-file+price-reference": ModePriceReference,
	}
	for raw, want := range cases {
		got, err := ParseMode(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseMode("4-file")
	assert.Error(t, err)
}

func TestModeLabelRoundTrips(t *testing.T) {
	for _, m := range []Mode{ModeSingle, ModeTwoFile, ModeThreeFile, ModePriceReference} {
		got, err := ParseMode(m.Label())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
}

func TestCombine(t *testing.T) {
	f1 := []model.LineItem{row("A100", "Bolt", 5, 10)}
	f2 := []model.LineItem{row("A100", "Bolt", 3, 12)}

	t.Run("two-file merge", func(t *testing.T) {
		got, err := Combine(ModeTwoFile, [][]model.LineItem{f1, f2})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, 86.0, got[0].Price)
	})

	t.Run("price reference", func(t *testing.T) {
		got, err := Combine(ModePriceReference, [][]model.LineItem{f1, f2})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, 5.0, got[0].Quantity)
		assert.Equal(t, 12.0, got[0].UnitPrice)
		assert.Equal(t, 60.0, got[0].Price)
	})

	t.Run("single passes through", func(t *testing.T) {
		got, err := Combine(ModeSingle, [][]model.LineItem{f1, f2})
		require.NoError(t, err)
		assert.Equal(t, f1, got)
	})

	t.Run("wrong file count", func(t *testing.T) {
		_, err := Combine(ModeThreeFile, [][]model.LineItem{f1, f2})
		var countErr *FileCountError
		require.ErrorAs(t, err, &countErr)
		assert.Equal(t, 3, countErr.Want)
		assert.Equal(t, 2, countErr.Got)
	})
}
