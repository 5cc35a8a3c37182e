package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/photoqc/photoqc-go/internal/locator"
	"github.com/photoqc/photoqc-go/internal/logger"
)

// BlobSyncer mirrors remote QC images into a local folder so the
// locator pipeline works unchanged on them.
type BlobSyncer interface {
	Sync(ctx context.Context, destDir string) (int, error)
}

type azureStorage struct {
	client    *azblob.Client
	container string
	prefix    string
}

// NewAzureStorage creates a blob syncer for one container, optionally
// limited to a name prefix.
func NewAzureStorage(accountName, accountKey, container, prefix string) (BlobSyncer, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("azure client: %w", err)
	}

	return &azureStorage{client: client, container: container, prefix: prefix}, nil
}

// Sync downloads every blob with a recognized image extension into
// destDir, skipping files that already exist locally. It returns the
// number of blobs downloaded.
func (s *azureStorage) Sync(ctx context.Context, destDir string) (int, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return 0, fmt.Errorf("creating QC directory %q: %w", destDir, err)
	}

	opts := &azblob.ListBlobsFlatOptions{}
	if s.prefix != "" {
		opts.Prefix = &s.prefix
	}

	synced := 0
	pager := s.client.NewListBlobsFlatPager(s.container, opts)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return synced, fmt.Errorf("listing blobs in %q: %w", s.container, err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			name := *item.Name
			if _, ok := locator.FormatOf(name); !ok {
				logger.WithField("blob", name).Debug("Skipping blob with unrecognized extension")
				continue
			}

			dest := filepath.Join(destDir, filepath.Base(name))
			if _, err := os.Stat(dest); err == nil {
				continue
			}

			if err := s.downloadBlob(ctx, name, dest); err != nil {
				return synced, err
			}
			synced++
		}
	}
	return synced, nil
}

func (s *azureStorage) downloadBlob(ctx context.Context, name, dest string) error {
	resp, err := s.client.DownloadStream(ctx, s.container, name, nil)
	if err != nil {
		return fmt.Errorf("downloading blob %q: %w", name, err)
	}
	defer resp.Body.Close()

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating %q: %w", dest, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(dest)
		return fmt.Errorf("writing %q: %w", dest, err)
	}
	return nil
}
