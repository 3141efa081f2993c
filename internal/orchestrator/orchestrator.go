package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/avessner/atelier/internal/channels"
	"github.com/avessner/atelier/internal/project"
)

// Mode selects which channel operation a run performs.
type Mode string

// Supported run modes.
const (
	ModeStage   Mode = Mode("stage")
	ModePublish Mode = Mode("publish")
)

// UnitStatus classifies the outcome of one (record, channel) unit.
type UnitStatus string

// Unit outcomes.
const (
	UnitStatusSucceeded UnitStatus = UnitStatus("succeeded")
	UnitStatusSkipped   UnitStatus = UnitStatus("skipped")
	UnitStatusFailed    UnitStatus = UnitStatus("failed")
)

const (
	orchestratorLoggerRequiredMessageConstant = "orchestrator logger not configured"
	unknownModeTemplateConstant               = "unknown run mode %q"
	runCanceledSkipReasonConstant             = "run canceled before dispatch"
	defaultWorkerCountConstant                = 4
	unitCompletedDebugMessageConstant         = "Processed publication unit"
	unitFailedWarnMessageConstant             = "Publication unit failed"
	projectLogFieldConstant                   = "project"
	channelLogFieldConstant                   = "channel"
	statusLogFieldConstant                    = "status"
)

// ErrLoggerNotConfigured indicates the orchestrator was created without a logger.
var ErrLoggerNotConfigured = errors.New(orchestratorLoggerRequiredMessageConstant)

// UnknownModeError indicates a run mode outside the supported set.
type UnknownModeError struct {
	Mode Mode
}

// Error describes the unsupported mode.
func (modeError UnknownModeError) Error() string {
	return fmt.Sprintf(unknownModeTemplateConstant, string(modeError.Mode))
}

// UnitResult reports the outcome of one (record, channel) unit.
type UnitResult struct {
	Project     string
	Channel     channels.Identifier
	Status      UnitStatus
	Reason      string
	Destination string
	Error       error
}

// Report aggregates every unit outcome of a run.
type Report struct {
	Units []UnitResult
}

// SucceededCount returns the number of successful units.
func (report Report) SucceededCount() int {
	return report.countByStatus(UnitStatusSucceeded)
}

// SkippedCount returns the number of skipped units.
func (report Report) SkippedCount() int {
	return report.countByStatus(UnitStatusSkipped)
}

// FailedCount returns the number of failed units.
func (report Report) FailedCount() int {
	return report.countByStatus(UnitStatusFailed)
}

// HasFailures reports whether any unit failed.
func (report Report) HasFailures() bool {
	return report.FailedCount() > 0
}

func (report Report) countByStatus(status UnitStatus) int {
	matchingUnits := 0
	for _, unit := range report.Units {
		if unit.Status == status {
			matchingUnits++
		}
	}
	return matchingUnits
}

// sharedArtifactIdentifiers lists channels whose staged artifacts are shared
// across records and therefore need serialized access. The website roadmap
// page is rebuilt from the full registry on every stage.
var sharedArtifactIdentifiers = map[channels.Identifier]struct{}{
	channels.IdentifierWebsite: {},
}

// Orchestrator fans publication units out across a bounded worker pool while
// keeping each record's channels strictly ordered.
type Orchestrator struct {
	logger       *zap.Logger
	workerCount  int
	channelLocks map[channels.Identifier]*sync.Mutex
}

// NewOrchestrator wires an orchestrator with the provided concurrency bound.
// Worker counts below one fall back to the default.
func NewOrchestrator(logger *zap.Logger, workerCount int) (*Orchestrator, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if workerCount < 1 {
		workerCount = defaultWorkerCountConstant
	}

	channelLocks := map[channels.Identifier]*sync.Mutex{}
	for identifier := range sharedArtifactIdentifiers {
		channelLocks[identifier] = &sync.Mutex{}
	}

	return &Orchestrator{logger: logger, workerCount: workerCount, channelLocks: channelLocks}, nil
}

// Run processes the cross product of records and channels in the requested
// mode. Records run in parallel; one record's channels run sequentially in
// caller order. Failures never abort the batch. Context cancellation stops
// dispatching new records while in-flight records finish.
func (orchestrator *Orchestrator) Run(executionContext context.Context, records []*project.Record, channelList []channels.Channel, mode Mode) (Report, error) {
	if mode != ModeStage && mode != ModePublish {
		return Report{}, UnknownModeError{Mode: mode}
	}

	unitsByRecord := make([][]UnitResult, len(records))

	workGroup := &errgroup.Group{}
	workGroup.SetLimit(orchestrator.workerCount)

	for recordIndex, record := range records {
		recordIndex := recordIndex
		record := record
		workGroup.Go(func() error {
			unitsByRecord[recordIndex] = orchestrator.processRecord(executionContext, record, channelList, mode)
			return nil
		})
	}

	// Record goroutines report every failure through their unit results.
	_ = workGroup.Wait()

	report := Report{}
	for _, recordUnits := range unitsByRecord {
		report.Units = append(report.Units, recordUnits...)
	}
	return report, nil
}

func (orchestrator *Orchestrator) processRecord(executionContext context.Context, record *project.Record, channelList []channels.Channel, mode Mode) []UnitResult {
	unitResults := make([]UnitResult, 0, len(channelList))
	for _, channel := range channelList {
		if executionContext.Err() != nil {
			unitResults = append(unitResults, UnitResult{
				Project: record.CanonicalName,
				Channel: channel.Identifier(),
				Status:  UnitStatusSkipped,
				Reason:  runCanceledSkipReasonConstant,
			})
			continue
		}
		unitResult := orchestrator.processUnit(executionContext, record, channel, mode)
		orchestrator.logUnit(unitResult)
		unitResults = append(unitResults, unitResult)
	}
	return unitResults
}

func (orchestrator *Orchestrator) processUnit(executionContext context.Context, record *project.Record, channel channels.Channel, mode Mode) UnitResult {
	unitResult := UnitResult{Project: record.CanonicalName, Channel: channel.Identifier()}

	eligible, ineligibilityReason := channel.IsEligible(record)
	if !eligible {
		unitResult.Status = UnitStatusSkipped
		unitResult.Reason = ineligibilityReason
		return unitResult
	}

	channelLock := orchestrator.channelLocks[channel.Identifier()]
	if channelLock != nil {
		channelLock.Lock()
		defer channelLock.Unlock()
	}

	stagedArtifact, stagingError := channel.Stage(executionContext, record)
	if stagingError != nil {
		unitResult.Status = UnitStatusFailed
		unitResult.Error = stagingError
		return unitResult
	}

	if mode == ModeStage {
		unitResult.Status = UnitStatusSucceeded
		return unitResult
	}

	publishResult, publishError := channel.Publish(executionContext, record, stagedArtifact)
	if publishError != nil {
		unitResult.Status = UnitStatusFailed
		unitResult.Error = publishError
		return unitResult
	}
	if publishResult.Skipped {
		unitResult.Status = UnitStatusSkipped
		unitResult.Reason = publishResult.SkipReason
		return unitResult
	}

	unitResult.Status = UnitStatusSucceeded
	unitResult.Destination = publishResult.Destination
	return unitResult
}

func (orchestrator *Orchestrator) logUnit(unitResult UnitResult) {
	if unitResult.Status == UnitStatusFailed {
		orchestrator.logger.Warn(unitFailedWarnMessageConstant,
			zap.String(projectLogFieldConstant, unitResult.Project),
			zap.String(channelLogFieldConstant, string(unitResult.Channel)),
			zap.Error(unitResult.Error),
		)
		return
	}
	orchestrator.logger.Debug(unitCompletedDebugMessageConstant,
		zap.String(projectLogFieldConstant, unitResult.Project),
		zap.String(channelLogFieldConstant, string(unitResult.Channel)),
		zap.String(statusLogFieldConstant, string(unitResult.Status)),
	)
}
