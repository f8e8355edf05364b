package export

import (
	"bytes"
	"context"
	"path"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	storage "google.golang.org/api/storage/v1"

	"satlink/internal"
	"satlink/internal/config"
	"satlink/internal/util"
)

// Publisher uploads export artifacts to a Cloud Storage bucket, where the
// dashboard picks them up.
type Publisher struct {
	service *storage.Service
	bucket  string
	prefix  string
}

// NewPublisher authenticates with the configured refresh token. Extra client
// options are appended last and win, which tests use to point the client
// at a local server.
func NewPublisher(ctx context.Context, cfg config.Config, opts ...option.ClientOption) (*Publisher, error) {
	if err := cfg.Require("GCS_BUCKET", cfg.GCSBucket); err != nil {
		return nil, err
	}

	clientOpts := []option.ClientOption{}
	if len(opts) == 0 {
		if err := cfg.Require("GCS_CLIENT_ID", cfg.GCSClientID); err != nil {
			return nil, err
		}
		if err := cfg.Require("GCS_CLIENT_SECRET", cfg.GCSClientSecret); err != nil {
			return nil, err
		}
		if err := cfg.Require("GCS_REFRESH_TOKEN", cfg.GCSRefreshToken); err != nil {
			return nil, err
		}
		oauthCfg := &oauth2.Config{
			ClientID:     cfg.GCSClientID,
			ClientSecret: cfg.GCSClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{storage.DevstorageReadWriteScope},
		}
		tokenSource := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.GCSRefreshToken})
		clientOpts = append(clientOpts, option.WithTokenSource(tokenSource))
		if cfg.GCSEndpoint != "" {
			clientOpts = append(clientOpts, option.WithEndpoint(cfg.GCSEndpoint))
		}
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := storage.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, err
	}

	return &Publisher{
		service: svc,
		bucket:  cfg.GCSBucket,
		prefix:  strings.Trim(cfg.GCSPrefix, "/"),
	}, nil
}

// Upload stores body under the configured prefix and returns the object name.
func (p *Publisher) Upload(ctx context.Context, name, contentType string, body []byte) (string, error) {
	objectName := name
	if p.prefix != "" {
		objectName = path.Join(p.prefix, name)
	}
	obj := &storage.Object{Name: objectName, ContentType: contentType}
	stored, err := p.service.Objects.Insert(p.bucket, obj).
		Media(bytes.NewReader(body)).
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	return stored.Name, nil
}

// PublishRecords uploads one <source>.csv per source plus a per-satellite
// listing under satellites/<name>.csv, mirroring the layout the dashboard
// reads from.
func (p *Publisher) PublishRecords(ctx context.Context, records []internal.Record) ([]string, error) {
	bySource := map[internal.SourceID][]internal.Record{}
	byPrimary := map[string][]internal.Record{}
	var sources []internal.SourceID
	var primaries []string
	for _, r := range records {
		if _, ok := bySource[r.Source]; !ok {
			sources = append(sources, r.Source)
		}
		bySource[r.Source] = append(bySource[r.Source], r)
		if _, ok := byPrimary[r.Primary]; !ok {
			primaries = append(primaries, r.Primary)
		}
		byPrimary[r.Primary] = append(byPrimary[r.Primary], r)
	}

	var uploaded []string
	for _, s := range sources {
		blob, err := CSVBytes(RowsFromRecords(bySource[s]))
		if err != nil {
			return uploaded, err
		}
		name, err := p.Upload(ctx, string(s)+".csv", "text/csv", blob)
		if err != nil {
			return uploaded, err
		}
		uploaded = append(uploaded, name)
	}
	for _, primary := range primaries {
		blob, err := CSVBytes(RowsFromRecords(byPrimary[primary]))
		if err != nil {
			return uploaded, err
		}
		key := util.SafeKey(primary)
		name, err := p.Upload(ctx, "satellites/"+key+".csv", "text/csv", blob)
		if err != nil {
			return uploaded, err
		}
		uploaded = append(uploaded, name)
	}
	return uploaded, nil
}
