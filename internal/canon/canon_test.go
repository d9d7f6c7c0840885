package canon

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/boardcut/internal/model"
)

func baseRequest() model.Request {
	return model.Request{
		ProjectName: "Kitchen",
		Pieces: []model.Piece{
			{ID: "a1", Label: "Side", Width: 600, Height: 720, Quantity: 2, Material: "MEL18"},
			{ID: "b2", Label: "Shelf", Width: 564, Height: 300, Quantity: 3, Material: "MEL18"},
			{ID: "c3", Label: "Back", Width: 600, Height: 720, Quantity: 1, Material: "MDF3"},
		},
		Materials: []model.Material{
			{Code: "MEL18", Width: 2440, Height: 1830, Thickness: 18, Price: 62},
			{Code: "MDF3", Width: 2440, Height: 1220, Thickness: 3, Price: 12},
		},
		Parameters: model.CuttingParameters{Kerf: 4, TopTrim: 10, BottomTrim: 10, LeftTrim: 10, RightTrim: 10},
	}
}

func TestHash_Format(t *testing.T) {
	h := Hash(baseRequest())
	assert.Len(t, h, 64)
	assert.True(t, ValidHash(h))
	assert.False(t, ValidHash("opt:"+h))
	assert.False(t, ValidHash(h[:10]))
}

func TestHash_OrderIndependent(t *testing.T) {
	req := baseRequest()
	shuffled := baseRequest()
	shuffled.Pieces = []model.Piece{shuffled.Pieces[2], shuffled.Pieces[0], shuffled.Pieces[1]}
	shuffled.Materials = []model.Material{shuffled.Materials[1], shuffled.Materials[0]}

	assert.Equal(t, Hash(req), Hash(shuffled))
	assert.Equal(t, string(Normalize(req).Bytes()), string(Normalize(shuffled).Bytes()))
}

func TestHash_IgnoresIDsAndProjectName(t *testing.T) {
	req := baseRequest()
	other := baseRequest()
	other.ProjectName = "Bathroom"
	for i := range other.Pieces {
		other.Pieces[i].ID = "zz" + other.Pieces[i].ID
	}
	assert.Equal(t, Hash(req), Hash(other))
}

func TestHash_MergesIdenticalPieces(t *testing.T) {
	req := baseRequest()
	split := baseRequest()
	split.Pieces[1].Quantity = 1
	split.Pieces = append(split.Pieces, model.Piece{ID: "d4", Label: "Shelf", Width: 564, Height: 300, Quantity: 2, Material: "MEL18"})

	assert.Equal(t, Hash(req), Hash(split))

	c := Normalize(split)
	require.Len(t, c.Pieces, 3)
	for _, p := range c.Pieces {
		if p.Label == "Shelf" {
			assert.Equal(t, 3, p.Quantity)
		}
	}
}

func TestHash_RoundsToHundredths(t *testing.T) {
	req := baseRequest()
	jitter := baseRequest()
	jitter.Pieces[0].Width = 600.001
	jitter.Parameters.Kerf = 4.0004
	assert.Equal(t, Hash(req), Hash(jitter))

	moved := baseRequest()
	moved.Pieces[0].Width = 600.01
	assert.NotEqual(t, Hash(req), Hash(moved))
}

func TestHash_Sensitivity(t *testing.T) {
	base := Hash(baseRequest())

	tests := []struct {
		name   string
		mutate func(r *model.Request)
	}{
		{"quantity", func(r *model.Request) { r.Pieces[0].Quantity++ }},
		{"label", func(r *model.Request) { r.Pieces[0].Label = "Door" }},
		{"grain", func(r *model.Request) { r.Pieces[0].Grain = model.GrainVertical }},
		{"piece material", func(r *model.Request) { r.Pieces[0].Material = "MDF3" }},
		{"material size", func(r *model.Request) { r.Materials[0].Height = 1220 }},
		{"material price", func(r *model.Request) { r.Materials[0].Price = 63 }},
		{"kerf", func(r *model.Request) { r.Parameters.Kerf = 3 }},
		{"top trim", func(r *model.Request) { r.Parameters.TopTrim = 0 }},
		{"trims swapped", func(r *model.Request) { r.Parameters.TopTrim, r.Parameters.LeftTrim = 5, 15 }},
		{"split rule", func(r *model.Request) { r.SplitRule = model.SplitLongerAxisFirst }},
		{"sheet cap", func(r *model.Request) { r.MaxSheets = 3 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := baseRequest()
			tc.mutate(&r)
			assert.NotEqual(t, base, Hash(r))
		})
	}
}

func TestHash_DefaultsAreExplicit(t *testing.T) {
	req := baseRequest()
	explicit := baseRequest()
	explicit.SplitRule = model.SplitShorterAxisFirst
	explicit.MaxSheets = model.DefaultMaxSheets
	assert.Equal(t, Hash(req), Hash(explicit))

	short := baseRequest()
	short.SplitRule = "longer"
	long := baseRequest()
	long.SplitRule = model.SplitLongerAxisFirst
	assert.Equal(t, Hash(long), Hash(short), "rule aliases hash alike")
}

func TestNormalize_DoesNotMutate(t *testing.T) {
	req := baseRequest()
	before := baseRequest()
	_ = Normalize(req)
	assert.Equal(t, before, req)
}

func TestNormalize_FixedPointStrings(t *testing.T) {
	req := baseRequest()
	req.Parameters.Kerf = 3.176
	c := Normalize(req)
	assert.Equal(t, "3.18", c.Parameters[0])
	assert.Equal(t, "MDF3", c.Materials[0].Code)
	assert.Equal(t, "2440.00", c.Materials[0].Width)
	assert.Contains(t, string(c.Bytes()), `"v":"`+SchemaVersion+`"`)
}

// randomRequest builds a request from r with sizes drawn at sub-hundredth
// resolution, so rounding is exercised too.
func randomRequest(r *rand.Rand) model.Request {
	codes := []string{"MEL18", "MEL15", "MDF3"}
	req := model.Request{
		Parameters: model.CuttingParameters{
			Kerf:     float64(r.Intn(800)) / 100,
			TopTrim:  float64(r.Intn(2000)) / 100,
			LeftTrim: float64(r.Intn(2000)) / 100,
		},
		MaxSheets: r.Intn(5),
	}
	if r.Intn(2) == 0 {
		req.SplitRule = model.SplitLongerAxisFirst
	}
	for _, code := range codes[:1+r.Intn(len(codes))] {
		req.Materials = append(req.Materials, model.Material{
			Code: code, Width: 2440, Height: 1220 + float64(r.Intn(3))*610,
			Thickness: 18, Price: float64(r.Intn(10000)) / 100,
		})
	}
	n := 1 + r.Intn(6)
	for i := 0; i < n; i++ {
		req.Pieces = append(req.Pieces, model.Piece{
			Label:    fmt.Sprintf("P%d", r.Intn(4)),
			Width:    50 + float64(r.Intn(100000))/1000,
			Height:   50 + float64(r.Intn(100000))/1000,
			Quantity: 1 + r.Intn(5),
			Material: req.Materials[r.Intn(len(req.Materials))].Code,
			Grain:    model.Grain(r.Intn(3)),
		})
	}
	return req
}

func TestHash_NoCollisionsAcrossGeneratedRequests(t *testing.T) {
	r := rand.New(rand.NewSource(6841))
	seen := make(map[string]string)
	for i := 0; i < 500; i++ {
		c := Normalize(randomRequest(r))
		h := c.Hash()
		if prev, ok := seen[h]; ok && prev != string(c.Bytes()) {
			t.Fatalf("hash %s shared by different canonical forms:\n%s\n%s", h, prev, c.Bytes())
		}
		seen[h] = string(c.Bytes())
	}
	assert.Greater(t, len(seen), 450, "generator should produce mostly distinct requests")
}

func TestRoundRequest(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		req := randomRequest(r)
		rounded := RoundRequest(req)
		assert.Equal(t, Hash(req), Hash(rounded), "rounding keeps the hash")
		assert.Equal(t, rounded, RoundRequest(rounded), "rounding is idempotent")
		for _, p := range rounded.Pieces {
			assert.Equal(t, math.Round(p.Width*100)/100, p.Width)
		}
	}
}

func TestRoundRequest_DoesNotMutate(t *testing.T) {
	req := baseRequest()
	req.Pieces[0].Width = 600.004
	req.Parameters.Kerf = 3.176

	rounded := RoundRequest(req)
	assert.Equal(t, 600.0, rounded.Pieces[0].Width)
	assert.Equal(t, 3.18, rounded.Parameters.Kerf)
	assert.Equal(t, 600.004, req.Pieces[0].Width)
	assert.Equal(t, 3.176, req.Parameters.Kerf)
}
