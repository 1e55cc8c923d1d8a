package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/codementor-backend/internal/data/repos/audit"
	"github.com/yungbote/codementor-backend/internal/platform/logger"
)

type AICallLogRepo = audit.AICallLogRepo

func NewAICallLogRepo(db *gorm.DB, baseLog *logger.Logger) AICallLogRepo {
	return audit.NewAICallLogRepo(db, baseLog)
}
