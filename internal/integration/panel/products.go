package panel

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/panel-product-bot/internal/entity"
	pkghttp "github.com/futig/panel-product-bot/pkg/http"
)

// CreateProduct submits the draft and returns the new product id. Session
// mode posts JSON, API key mode posts multipart form fields.
func (g *Gateway) CreateProduct(ctx context.Context, chatID entity.ChatID, draft entity.ProductDraft) (uint64, error) {
	a, err := g.resolveAuth(chatID)
	if err != nil {
		return 0, err
	}
	if err := a.requireWrite(); err != nil {
		return 0, err
	}
	ctx = a.logContext(ctx, "create_product")

	ctxzap.Info(ctx, "creating product",
		zap.String("name", draft.Name),
		zap.Uint64("price", draft.Price),
		zap.Uint64("category_id", draft.CategoryID),
	)

	var resp *pkghttp.Response
	switch a.kind {
	case AuthSession:
		resp, err = a.conn.DoJSON(ctx, http.MethodPost, ProductsPath, draft, a.opts...)
	default:
		resp, err = a.conn.DoMultipart(ctx, http.MethodPost, ProductsPath, func(w *multipart.Writer) error {
			return writeDraftFields(w, draft)
		}, a.opts...)
	}
	if err != nil {
		ctxzap.Error(ctx, "failed to create product", zap.Error(err))
		return 0, fmt.Errorf("create product: %w", err)
	}

	id, err := responseID(resp)
	if err != nil {
		return 0, fmt.Errorf("create product: %w", err)
	}

	ctxzap.Info(ctx, "product created", zap.Uint64("product_id", id))
	return id, nil
}

// UploadProductImage attaches an image to a product and returns the image id.
func (g *Gateway) UploadProductImage(ctx context.Context, chatID entity.ChatID, productID uint64, image entity.ImageFile) (uint64, error) {
	a, err := g.resolveAuth(chatID)
	if err != nil {
		return 0, err
	}
	if err := a.requireWrite(); err != nil {
		return 0, err
	}
	ctx = a.logContext(ctx, "upload_product_image")

	ctxzap.Info(ctx, "uploading product image",
		zap.Uint64("product_id", productID),
		zap.String("filename", image.Filename),
		zap.Int("size", len(image.Content)),
	)

	endpoint := fmt.Sprintf(ProductImagePath, productID)
	resp, err := a.conn.DoMultipart(ctx, http.MethodPost, endpoint, func(w *multipart.Writer) error {
		return writeImagePart(w, image)
	}, a.opts...)
	if err != nil {
		ctxzap.Error(ctx, "failed to upload product image", zap.Error(err))
		return 0, fmt.Errorf("upload product image: %w", err)
	}

	id, err := responseID(resp)
	if err != nil {
		return 0, fmt.Errorf("upload product image: %w", err)
	}

	ctxzap.Info(ctx, "product image uploaded", zap.Uint64("image_id", id))
	return id, nil
}

func responseID(resp *pkghttp.Response) (uint64, error) {
	root, err := decodeBody(resp)
	if err != nil {
		return 0, err
	}
	id, ok := extractID(root)
	if !ok {
		return 0, shapeError(resp, "no id in response")
	}
	return id, nil
}

func writeDraftFields(w *multipart.Writer, draft entity.ProductDraft) error {
	fields := []struct{ key, value string }{
		{"name", draft.Name},
		{"price", strconv.FormatUint(draft.Price, 10)},
		{"main_category", strconv.FormatUint(draft.CategoryID, 10)},
	}
	for _, f := range fields {
		if err := w.WriteField(f.key, f.value); err != nil {
			return fmt.Errorf("write field %s: %w", f.key, err)
		}
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeImagePart(w *multipart.Writer, image entity.ImageFile) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, quoteEscaper.Replace(image.Filename)))
	h.Set("Content-Type", ImageMIMEType(image.Filename))

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create image part: %w", err)
	}
	if _, err := part.Write(image.Content); err != nil {
		return fmt.Errorf("write image content: %w", err)
	}
	return nil
}

// ImageMIMEType guesses the MIME type from the extension, defaulting to JPEG.
func ImageMIMEType(filename string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	case "gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
