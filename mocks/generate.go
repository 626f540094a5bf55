package mocks

//go:generate mockgen -destination=./mock_price_series.go -package=mocks github.com/rxtech-lab/argo-steps/internal/datasource PriceSeries
//go:generate mockgen -destination=./mock_observer.go -package=mocks github.com/rxtech-lab/argo-steps/internal/engine Observer,HistorySink
//go:generate mockgen -destination=./mock_function_loader.go -package=mocks github.com/rxtech-lab/argo-steps/internal/step FunctionLoader,Function
