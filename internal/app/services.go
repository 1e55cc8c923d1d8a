package app

import (
	"fmt"

	"github.com/yungbote/codementor-backend/internal/data/db"
	"github.com/yungbote/codementor-backend/internal/data/repos"
	"github.com/yungbote/codementor-backend/internal/dispatch"
	"github.com/yungbote/codementor-backend/internal/mentor"
	"github.com/yungbote/codementor-backend/internal/platform/logger"
	"github.com/yungbote/codementor-backend/internal/providers"
)

// wireCallLog returns nil when the database is disabled.
func wireCallLog(dbs *db.Service, log *logger.Logger) repos.AICallLogRepo {
	if dbs == nil {
		return nil
	}
	return repos.NewAICallLogRepo(dbs.DB(), log)
}

func wireDispatcher(a Adapters, callLog repos.AICallLogRepo, log *logger.Logger) (*dispatch.Dispatcher, error) {
	log.Info("Wiring dispatcher...")
	d, err := dispatch.New(dispatch.Options{
		Chat: map[mentor.Provider]providers.ChatResponder{
			mentor.ProviderOpenAI:    a.OpenAI,
			mentor.ProviderAnthropic: a.Anthropic,
			mentor.ProviderLlama3:    a.Perplexity,
		},
		Feedback: map[mentor.Provider]providers.FeedbackProvider{
			mentor.ProviderOpenAI: a.OpenAI,
			mentor.ProviderLlama3: a.Perplexity,
		},
		Hint:    a.OpenAI,
		Videos:  a.OpenAI,
		CallLog: callLog,
		Log:     log,
	})
	if err != nil {
		return nil, fmt.Errorf("init dispatcher: %w", err)
	}
	return d, nil
}
