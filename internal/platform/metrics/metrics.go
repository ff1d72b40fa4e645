package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	UsersCreated   *prometheus.CounterVec
	Logins         *prometheus.CounterVec
	SocialLogins   *prometheus.CounterVec
	Approvals      prometheus.Counter
	TokenRefreshes prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		UsersCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "alumnet_users_created_total",
			Help: "Total number of accounts created, by role",
		}, []string{"role"}),
		Logins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "alumnet_logins_total",
			Help: "Password login attempts by outcome",
		}, []string{"outcome"}),
		SocialLogins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "alumnet_social_logins_total",
			Help: "Social login attempts by provider and outcome",
		}, []string{"provider", "outcome"}),
		Approvals: promauto.NewCounter(prometheus.CounterOpts{
			Name: "alumnet_account_approvals_total",
			Help: "Accounts approved by an administrator",
		}),
		TokenRefreshes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "alumnet_token_refreshes_total",
			Help: "Successful refresh token exchanges",
		}),
	}
}

func (m *Metrics) IncrementUsersCreated(role string) {
	if m == nil {
		return
	}
	m.UsersCreated.WithLabelValues(role).Inc()
}

func (m *Metrics) IncrementLogin(outcome string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementSocialLogin(provider, outcome string) {
	if m == nil {
		return
	}
	m.SocialLogins.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) IncrementApprovals() {
	if m == nil {
		return
	}
	m.Approvals.Inc()
}

func (m *Metrics) IncrementTokenRefreshes() {
	if m == nil {
		return
	}
	m.TokenRefreshes.Inc()
}
