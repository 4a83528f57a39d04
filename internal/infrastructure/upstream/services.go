package upstream

import (
	"fmt"

	"github.com/jass/bff/internal/infrastructure/config"
	"github.com/jass/bff/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Services bundles one typed client per JASS service
type Services struct {
	Auth           *AuthClient
	Users          *UsersClient
	Organizations  *OrganizationsClient
	Payments       *PaymentsClient
	Distribution   *DistributionClient
	Quality        *QualityClient
	Infrastructure *InfrastructureClient
	Reniec         *ReniecClient
}

// NewServices builds every client from the upstream configuration
func NewServices(cfg config.UpstreamConfig, metrics *telemetry.Metrics, log *zap.Logger) (*Services, error) {
	build := func(name, baseURL, staticToken string) (*Client, error) {
		return NewClient(Config{
			Name:             name,
			BaseURL:          baseURL,
			Timeout:          cfg.Timeout,
			MaxRetries:       cfg.MaxRetries,
			RetryInterval:    cfg.RetryInterval,
			RetryMaxInterval: cfg.RetryMaxInterval,
			RatePerSecond:    cfg.RatePerSecond,
			Burst:            cfg.Burst,
			StaticToken:      staticToken,
		}, WithMetrics(metrics), WithLogger(log.Named("upstream."+name)))
	}

	specs := []struct {
		name, url, token string
	}{
		{"gateway", cfg.GatewayURL, ""},
		{"users", cfg.UsersURL, ""},
		{"organizations", cfg.OrganizationsURL, ""},
		{"payments", cfg.PaymentsURL, ""},
		{"distribution", cfg.DistributionURL, ""},
		{"quality", cfg.QualityURL, ""},
		{"infrastructure", cfg.InfrastructureURL, ""},
		{"reniec", cfg.ReniecURL, cfg.ReniecToken},
	}
	clients := make(map[string]*Client, len(specs))
	for _, s := range specs {
		c, err := build(s.name, s.url, s.token)
		if err != nil {
			return nil, fmt.Errorf("create %s client: %w", s.name, err)
		}
		clients[s.name] = c
	}

	return &Services{
		Auth:           NewAuthClient(clients["gateway"]),
		Users:          NewUsersClient(clients["users"]),
		Organizations:  NewOrganizationsClient(clients["organizations"]),
		Payments:       NewPaymentsClient(clients["payments"]),
		Distribution:   NewDistributionClient(clients["distribution"]),
		Quality:        NewQualityClient(clients["quality"]),
		Infrastructure: NewInfrastructureClient(clients["infrastructure"]),
		Reniec:         NewReniecClient(clients["reniec"]),
	}, nil
}
