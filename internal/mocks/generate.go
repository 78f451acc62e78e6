package mocks

// Mock generation directives. Run `make mocks` or `go generate ./internal/mocks/` to regenerate.

//go:generate go run go.uber.org/mock/mockgen -source=../core/provider.go -destination=mock_provider.go -package=mocks
//go:generate go run go.uber.org/mock/mockgen -source=../core/lease.go -destination=mock_lease.go -package=mocks
//go:generate go run go.uber.org/mock/mockgen -source=../core/metrics.go -destination=mock_metrics.go -package=mocks
