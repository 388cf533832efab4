package cart

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wichananm65/marketplace-backend/internal/media"
)

// BlobSource looks up locally uploaded images.
type BlobSource interface {
	Get(ctx context.Context, id string) (media.Blob, error)
}

// ProductImageSource returns the catalog image of a product.
type ProductImageSource interface {
	ImageFor(ctx context.Context, productID string) (string, error)
}

// ImageResolver picks the image to show for a cart or order line. Every
// view that renders items goes through Resolve so they all agree.
type ImageResolver struct {
	blobs       BlobSource
	products    ProductImageSource
	placeholder string
	log         logrus.FieldLogger
}

func NewImageResolver(blobs BlobSource, products ProductImageSource, placeholder string, log logrus.FieldLogger) *ImageResolver {
	return &ImageResolver{blobs: blobs, products: products, placeholder: placeholder, log: log}
}

// Resolve tries displayImage, imageUrl and image (safe URLs only), then the
// local blob, then the product's own image, then the placeholder.
func (r *ImageResolver) Resolve(ctx context.Context, item Item) string {
	for _, candidate := range []string{item.DisplayImage, item.ImageURL, item.Image} {
		if media.SafeImageURL(candidate) {
			return strings.TrimSpace(candidate)
		}
	}

	if item.LocalImageID != "" && r.blobs != nil {
		if _, err := r.blobs.Get(ctx, item.LocalImageID); err == nil {
			return media.URL(item.LocalImageID)
		} else {
			r.log.WithError(err).WithField("localImageId", item.LocalImageID).Debug("local image lookup failed")
		}
	}

	if item.ProductID != "" && r.products != nil {
		img, err := r.products.ImageFor(ctx, item.ProductID)
		if err != nil {
			r.log.WithError(err).WithField("productId", item.ProductID).Debug("product image lookup failed")
		} else if media.SafeImageURL(img) {
			return strings.TrimSpace(img)
		}
	}

	return r.placeholder
}
