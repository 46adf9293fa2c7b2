package services

// ServiceContainer holds instances of all the application services. It is the
// main entry point for accessing service functionality and is handed to the
// HTTP handlers at route registration time.
type ServiceContainer struct {
	User         UserSvcFacade
	Transfer     TransferSvcFacade
	Scheduler    ProgressionScheduler
	ExchangeRate ExchangeRateSvcFacade
	Risk         RiskSvcFacade
	Document     DocumentSvcFacade
}
