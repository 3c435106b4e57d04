package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/jakechorley/branch-cover/internal/config"
	"github.com/jakechorley/branch-cover/pkg/core/services"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg     *config.Config
	Service *services.AssignmentService
	Logger  *zap.Logger
	Ctx     context.Context
}
