package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/common"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/netx"
)

// AttachReceipt uploads a local file (a purchase receipt scan) to object
// storage through a presigned URL issued by the server.
func (a *App) AttachReceipt(ctx context.Context) error {
	path, err := getSimpleText(a.reader, "Path to the receipt file", os.Stdout)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		printlnFn("Cannot read file:", err.Error())
		return err
	}

	key, url, err := a.client.PresignPut(ctx, filepath.Base(path))
	if err != nil {
		printlnFn(common.UserMessage(err))
		return err
	}

	if err := netx.UploadToPresignedURL(ctx, url, data); err != nil {
		printlnFn("Upload failed:", err.Error())
		return err
	}

	printlnFn("Receipt stored as", key)
	return nil
}
