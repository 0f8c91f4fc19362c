// Package factory builds the token store and the tools from the configuration.
package factory

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcpbrief/config"
	"github.com/effective-security/mcpbrief/pkg/gauth"
	"github.com/effective-security/mcpbrief/store"
	"github.com/effective-security/mcpbrief/tools"
	"github.com/effective-security/mcpbrief/tools/briefing"
	"github.com/effective-security/mcpbrief/tools/calendar"
	"github.com/effective-security/mcpbrief/tools/kbo"
	"github.com/effective-security/mcpbrief/tools/news"
	"github.com/effective-security/mcpbrief/tools/quote"
	"github.com/effective-security/mcpbrief/tools/scraper"
	"github.com/effective-security/mcpbrief/tools/weather"
	"github.com/effective-security/xlog"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/mcpbrief", "factory")

// Factory creates the tools with shared dependencies
type Factory struct {
	cfg        *config.Config
	httpClient *http.Client
	store      store.TokenStore
	redis      redis.UniversalClient
}

// New returns a Factory for the configuration.
// Close must be called to release the token store.
func New(cfg *config.Config) (*Factory, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}

	f := &Factory{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}

	switch cfg.TokenStore.Kind {
	case config.StoreRedis:
		opts, err := redis.ParseURL(cfg.TokenStore.RedisURL)
		if err != nil {
			return nil, errors.Wrap(err, "invalid redis_url")
		}
		f.redis = redis.NewClient(opts)
		f.store = store.NewRedisStore(f.redis, cfg.TokenStore.Prefix)
	case config.StoreFile, "":
		f.store = store.NewFileStore(cfg.TokenStore.Path)
	default:
		return nil, errors.Errorf("unsupported token store: %s", cfg.TokenStore.Kind)
	}

	logger.KV(xlog.DEBUG, "status", "created", "token_store", f.store.Name())
	return f, nil
}

// TokenStore returns the configured token store
func (f *Factory) TokenStore() store.TokenStore {
	return f.store
}

// HTTPClient returns the client shared by the tools
func (f *Factory) HTTPClient() *http.Client {
	return f.httpClient
}

// OAuthConfig returns the Google OAuth2 config from the client secret file
func (f *Factory) OAuthConfig() (*oauth2.Config, error) {
	return gauth.LoadConfig(f.cfg.Calendar.ClientSecret, gauth.CalendarReadonlyScope)
}

// Tools returns the tools in the order they are exposed to the agent.
// The quote tool is omitted when the OpenAI key is not configured.
func (f *Factory) Tools() ([]tools.ITool, error) {
	var list []tools.ITool

	scrape, err := scraper.New()
	if err != nil {
		return nil, err
	}
	list = append(list, scrape.WithHTTPClient(f.httpClient))

	wt, err := weather.New()
	if err != nil {
		return nil, err
	}
	wt.WithHTTPClient(f.httpClient)
	if f.cfg.Weather.ForecastURL != "" {
		wt.WithForecastURL(f.cfg.Weather.ForecastURL)
	}
	if f.cfg.Weather.GeocoderURL != "" {
		wt.WithGeocoder(weather.NewNominatim(f.cfg.Weather.GeocoderURL))
	}
	list = append(list, wt)

	nt, err := news.New()
	if err != nil {
		return nil, err
	}
	nt.WithHTTPClient(f.httpClient)
	if f.cfg.News.FeedURL != "" {
		nt.WithFeedURL(f.cfg.News.FeedURL)
	}
	list = append(list, nt)

	kt, err := kbo.New()
	if err != nil {
		return nil, err
	}
	kt.WithHTTPClient(f.httpClient)
	if f.cfg.KBO.RankURL != "" {
		kt.WithRankURL(f.cfg.KBO.RankURL)
	}
	list = append(list, kt)

	ct, err := f.calendar()
	if err != nil {
		return nil, err
	}
	list = append(list, ct)

	if f.cfg.OpenAI.APIKey != "" {
		qt, err := quote.New(quote.Config{
			APIKey:     f.cfg.OpenAI.APIKey,
			Model:      f.cfg.OpenAI.Model,
			BaseURL:    f.cfg.OpenAI.BaseURL,
			HTTPClient: f.httpClient,
		})
		if err != nil {
			return nil, err
		}
		list = append(list, qt)
	} else {
		logger.KV(xlog.WARNING,
			"reason", "no_api_key",
			"tool", quote.ToolName,
			"env", config.EnvOpenAIKey,
		)
	}

	bt, err := briefing.New()
	if err != nil {
		return nil, err
	}
	list = append(list, bt)

	return list, nil
}

func (f *Factory) calendar() (*calendar.Tool, error) {
	// without the client secret an expired token can not be refreshed,
	// the tool reports AuthRequired in that case
	oauthCfg, err := f.OAuthConfig()
	if err != nil {
		logger.KV(xlog.WARNING,
			"reason", "oauth_config",
			"client_secret", f.cfg.Calendar.ClientSecret,
			"err", err.Error(),
		)
		oauthCfg = nil
	}

	loc, err := f.cfg.Location()
	if err != nil {
		return nil, err
	}

	ct, err := calendar.New(f.store, oauthCfg)
	if err != nil {
		return nil, err
	}
	ct.WithHTTPClient(f.httpClient).
		WithLocation(loc).
		WithDayBoundary(calendar.DayBoundary(f.cfg.Calendar.DayBoundary))
	if f.cfg.Calendar.Endpoint != "" {
		ct.WithEndpoint(f.cfg.Calendar.Endpoint)
	}
	return ct, nil
}

// NewRegistry returns the registry with all tools registered
func (f *Factory) NewRegistry(callbacks ...tools.Callback) (*tools.Registry, error) {
	list, err := f.Tools()
	if err != nil {
		return nil, err
	}
	r := tools.NewRegistry(callbacks...)
	for _, t := range list {
		if err := r.RegisterTool(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Close releases the token store connection
func (f *Factory) Close() error {
	if f.redis != nil {
		return f.redis.Close()
	}
	return nil
}
