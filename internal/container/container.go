package container

import (
	"github.com/sirupsen/logrus"

	app "bloodcell/internal/application"
	"bloodcell/internal/domain/diagnosis"
	"bloodcell/internal/domain/port"
)

type Container struct {
	AnalysisService *app.AnalysisService
	SessionService  *app.SessionService
	Log             logrus.FieldLogger
}

// New собирает сервисы. detector создаётся один раз при старте и только читается.
func New(detector port.CellDetector, sessions port.SessionRepository, thresholds diagnosis.Thresholds, log logrus.FieldLogger) *Container {
	rules := diagnosis.NewEngine(thresholds)

	return &Container{
		AnalysisService: app.NewAnalysisService(detector, rules, log),
		SessionService:  app.NewSessionService(sessions),
		Log:             log,
	}
}
