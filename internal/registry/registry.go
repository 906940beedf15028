// Package registry wires the built-in segment types into a segment.Registry.
package registry

import (
	"docscribe/internal/exporter"
	"docscribe/internal/model"
	"docscribe/internal/repository"
	"docscribe/internal/s3client"
	"docscribe/internal/segment"
)

// Default returns the closed set of segment types: local and s3 for both
// exporters and repositories.
func Default() *segment.Registry {
	r := segment.NewRegistry()

	r.Register(model.CategoryExporters, segment.Variant{
		Type:               exporter.TypeLocal,
		New:                exporter.NewLocal,
		BuildDefaultConfig: exporter.BuildLocalConfig,
	})
	r.Register(model.CategoryExporters, segment.Variant{
		Type:               exporter.TypeS3,
		New:                exporter.NewS3,
		BuildDefaultConfig: s3client.BuildConfig,
	})

	r.Register(model.CategoryRepositories, segment.Variant{
		Type:               repository.TypeLocal,
		New:                repository.NewLocal,
		BuildDefaultConfig: repository.BuildLocalConfig,
	})
	r.Register(model.CategoryRepositories, segment.Variant{
		Type:               repository.TypeS3,
		New:                repository.NewS3,
		BuildDefaultConfig: s3client.BuildConfig,
	})
	return r
}
