package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/league --output domain/league --outpkg leaguemock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/leaguetype --output domain/leaguetype --outpkg leaguetypemock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name DataProvider --dir ../usecase --output usecase --outpkg usecasemock --filename data_provider_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name ScoringRunner --dir ../usecase --output usecase --outpkg usecasemock --filename scoring_runner_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name UsageReporter --dir ../usecase --output usecase --outpkg usecasemock --filename usage_reporter_mock.go
