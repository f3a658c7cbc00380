package embedding

import (
	"context"
	"math"
	"testing"
)

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := NewHashEmbedder(16)
	defer e.Close()
	ctx := context.Background()

	a, err := e.Embed(ctx, "consumer price inflation")
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Embed(ctx, "consumer price inflation")
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 16 {
		t.Fatalf("dimension: got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embedding not deterministic at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestHashEmbedder_UnitNorm(t *testing.T) {
	e := NewHashEmbedder(32)
	defer e.Close()

	emb, err := e.Embed(context.Background(), "monthly rainfall totals")
	if err != nil {
		t.Fatal(err)
	}
	var sum float64
	for _, v := range emb {
		sum += float64(v * v)
	}
	if math.Abs(sum-1.0) > 1e-5 {
		t.Errorf("norm^2: got %f, want 1", sum)
	}
}

func TestHashEmbedder_SharedWordsCloser(t *testing.T) {
	e := NewHashEmbedder(64)
	defer e.Close()
	ctx := context.Background()

	q, _ := e.Embed(ctx, "inflation report")
	near, _ := e.Embed(ctx, "inflation figures")
	far, _ := e.Embed(ctx, "rainfall totals")

	if sqDist(q, near) >= sqDist(q, far) {
		t.Error("text sharing a word should be closer than text sharing none")
	}
}

func TestHashEmbedder_EmbedBatch(t *testing.T) {
	e := NewHashEmbedder(8)
	defer e.Close()

	out, err := e.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 {
		t.Fatalf("batch size: got %d", len(out))
	}
	for _, v := range out {
		if len(v) != 8 {
			t.Errorf("dimension: got %d", len(v))
		}
	}
}

func TestHashEmbedder_DefaultDimensions(t *testing.T) {
	e := NewHashEmbedder(0)
	if e.Dimensions() != 384 {
		t.Errorf("default dimensions: got %d", e.Dimensions())
	}
}

func sqDist(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
