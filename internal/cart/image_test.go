package cart

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/wichananm65/marketplace-backend/internal/media"
)

type fakeImages map[string]string

func (f fakeImages) ImageFor(ctx context.Context, productID string) (string, error) {
	img, ok := f[productID]
	if !ok {
		return "", errors.New("no such product")
	}
	return img, nil
}

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestImageResolver_Order(t *testing.T) {
	ctx := context.Background()
	blobs := media.NewInMemoryStore()
	blob, err := blobs.Put(ctx, "image/png", []byte("png"))
	if err != nil {
		t.Fatal(err)
	}
	products := fakeImages{
		"p1": "https://cdn.example.com/p1.png",
		"p2": "javascript:alert(1)",
	}
	r := NewImageResolver(blobs, products, "/static/placeholder.png", quietLogger())

	cases := []struct {
		name string
		item Item
		want string
	}{
		{
			name: "display image first",
			item: Item{DisplayImage: "https://a.example.com/x.png", ImageURL: "https://b.example.com/y.png", ProductID: "p1"},
			want: "https://a.example.com/x.png",
		},
		{
			name: "unsafe candidates skipped",
			item: Item{DisplayImage: "javascript:alert(1)", ImageURL: "/relative.png", Image: "data:image/png;base64,aGk="},
			want: "data:image/png;base64,aGk=",
		},
		{
			name: "local blob",
			item: Item{Image: "ftp://x/y.png", LocalImageID: blob.ID, ProductID: "p1"},
			want: media.URL(blob.ID),
		},
		{
			name: "missing blob falls through to product",
			item: Item{LocalImageID: "gone", ProductID: "p1"},
			want: "https://cdn.example.com/p1.png",
		},
		{
			name: "unsafe product image reaches placeholder",
			item: Item{DisplayImage: "javascript:void(0)", ProductID: "p2"},
			want: "/static/placeholder.png",
		},
		{
			name: "unknown product",
			item: Item{ProductID: "nope"},
			want: "/static/placeholder.png",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, r.Resolve(ctx, tc.item))
		})
	}
}

func TestImageResolver_NilSources(t *testing.T) {
	r := NewImageResolver(nil, nil, "ph", quietLogger())
	assert.Equal(t, "ph", r.Resolve(context.Background(), Item{ProductID: "p1", LocalImageID: "b1"}))
}
