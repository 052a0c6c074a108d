package v1

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/hrygo/eidos/internal/observability"
	"github.com/hrygo/eidos/internal/profile"
	"github.com/hrygo/eidos/plugin/ai"
	"github.com/hrygo/eidos/plugin/ai/agent"
	"github.com/hrygo/eidos/plugin/ai/agent/tools"
	"github.com/hrygo/eidos/plugin/ai/collector"
	aicontext "github.com/hrygo/eidos/plugin/ai/context"
	"github.com/hrygo/eidos/server/auth"
	apimiddleware "github.com/hrygo/eidos/server/middleware"
	"github.com/hrygo/eidos/server/service/tracker"
	"github.com/hrygo/eidos/store"
)

// APIPrefix is the mount point of every v1 route.
const APIPrefix = "/api/v1"

type APIV1Service struct {
	Profile      *profile.Profile
	Store        *store.Store
	Tracker      tracker.Service
	Tokens       *auth.TokenService
	ContextCache *aicontext.Cache
	Catalog      *tools.Catalog
	Builtin      *tools.BuiltinExecutor
	External     *tools.ExternalInvoker
	Metrics      *observability.Metrics
	Limiter      *apimiddleware.RateLimiter

	// Agent is nil when no LLM is configured; chat then fails with
	// LLM_UNAVAILABLE while the trackers keep working.
	Agent *agent.Agent
}

// NewAPIV1Service wires the assistant pipeline over store. llm may be nil.
func NewAPIV1Service(profile *profile.Profile, store *store.Store, llm ai.LLMService) *APIV1Service {
	metrics := observability.GlobalMetrics()
	trackerService := tracker.NewService(store)
	contextCache := aicontext.NewCache(collector.NewCollector(store), aicontext.Config{TTL: profile.ContextTTL})
	tokens := auth.NewTokenService(profile.Secret)

	service := &APIV1Service{
		Profile:      profile,
		Store:        store,
		Tracker:      trackerService,
		Tokens:       tokens,
		ContextCache: contextCache,
		Catalog:      tools.NewCatalog(store),
		Builtin:      tools.NewBuiltinExecutor(trackerService, contextCache),
		External:     tools.NewExternalInvoker(tokens, profile.ModuleTimeout),
		Metrics:      metrics,
		Limiter:      apimiddleware.NewRateLimiter(apimiddleware.DefaultInterval, apimiddleware.DefaultBurst),
	}
	if llm != nil {
		service.Agent = agent.NewAgent(llm, agent.AgentConfig{}, metrics)
	}
	return service
}

// RegisterRoutes mounts the API on echoServer.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	echoServer.HTTPErrorHandler = HTTPErrorHandler

	api := echoServer.Group(APIPrefix)
	api.Use(middleware.CORS())
	api.Use(auth.Middleware(s.Tokens, isPublicRoute))

	api.POST("/auth/token", s.IssueToken)
	api.POST("/webhook/:api_key", s.HandleWebhook)

	api.POST("/chat", s.HandleChat, apimiddleware.PerUser(s.Limiter, auth.UserID))
	api.GET("/chat/conversations", s.ListConversations)
	api.GET("/chat/conversations/:id/messages", s.ListConversationMessages)
	api.DELETE("/chat/conversations/:id", s.DeleteConversation)

	api.GET("/context", s.GetContext)
	api.POST("/context/refresh", s.RefreshContext)

	api.POST("/sleep/records", s.CreateSleepRecord)
	api.GET("/sleep/records", s.ListSleepRecords)
	api.DELETE("/sleep/records/:id", s.DeleteSleepRecord)
	api.GET("/sleep/stats", s.GetSleepStats)

	api.POST("/habits", s.CreateHabit)
	api.GET("/habits", s.ListHabits)
	api.GET("/habits/stats/overview", s.GetHabitStats)
	api.GET("/habits/:id", s.GetHabit)
	api.PUT("/habits/:id", s.UpdateHabit)
	api.DELETE("/habits/:id", s.DeleteHabit)
	api.POST("/habits/:id/complete", s.CompleteHabit)
	api.GET("/habits/:id/logs", s.ListHabitLogs)

	api.POST("/finance/transactions", s.CreateTransaction)
	api.GET("/finance/transactions", s.ListTransactions)
	api.DELETE("/finance/transactions/:id", s.DeleteTransaction)
	api.GET("/finance/stats", s.GetFinanceStats)

	api.POST("/calendar/events", s.CreateEvent)
	api.GET("/calendar/events", s.ListEvents)
	api.PUT("/calendar/events/:id", s.UpdateEvent)
	api.DELETE("/calendar/events/:id", s.DeleteEvent)

	api.POST("/modules", s.CreateModule)
	api.GET("/modules", s.ListModules)
	api.GET("/modules/installed", s.ListInstalledModules)
	api.GET("/modules/my", s.ListMyModules)
	api.GET("/modules/:id", s.GetModule)
	api.PUT("/modules/:id", s.UpdateModule)
	api.DELETE("/modules/:id", s.DeleteModule)
	api.POST("/modules/:id/call", s.CallModule)
	api.POST("/modules/:id/install", s.InstallModule)
	api.DELETE("/modules/:id/install", s.UninstallModule)
	api.PUT("/modules/:id/enabled", s.SetModuleEnabled)

	api.GET("/notifications", s.ListNotifications)
	api.POST("/notifications", s.CreateNotification)
	api.PUT("/notifications/read-all", s.MarkAllNotificationsRead)
	api.PUT("/notifications/:id/read", s.MarkNotificationRead)
	api.DELETE("/notifications/:id", s.DeleteNotification)

	api.GET("/system/metrics/overview", s.GetMetricsOverview)
}

// isPublicRoute reports the routes reachable without an access token.
func isPublicRoute(c echo.Context) bool {
	path := c.Path()
	return path == APIPrefix+"/auth/token" || strings.HasPrefix(path, APIPrefix+"/webhook/")
}
