// Package usecases contains the application's business logic
package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abelzeko/border-wait/internal/entities"
	"github.com/abelzeko/border-wait/internal/logger"
	"github.com/abelzeko/border-wait/internal/portid"
	"github.com/abelzeko/border-wait/internal/repository"
)

// ErrPortNotFound is returned when no CBP port matches an identifier
var ErrPortNotFound = errors.New("port not found")

// CrossingSource fetches wait times from the two border agencies
type CrossingSource interface {
	FetchCanadaData(ctx context.Context) ([]entities.CanadaBorderCrossingTimes, error)
	FetchUSData(ctx context.Context) ([]entities.BorderCrossing, error)
}

// CrossingUseCase handles business logic related to border wait times
type CrossingUseCase struct {
	repo   repository.CrossingRepository
	source CrossingSource
	codec  *portid.Codec
}

// NewCrossingUseCase creates a new crossing use case
func NewCrossingUseCase(repo repository.CrossingRepository, source CrossingSource, codec *portid.Codec) *CrossingUseCase {
	return &CrossingUseCase{
		repo:   repo,
		source: source,
		codec:  codec,
	}
}

// RefreshCrossingData fetches both sources and stores what succeeded.
// It fails only when neither source could be refreshed.
func (uc *CrossingUseCase) RefreshCrossingData(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info().Msg("starting wait time refresh")

	var errs []error

	// Fetch and save the CBSA offices
	canada, err := uc.source.FetchCanadaData(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("CBSA refresh failed")
		errs = append(errs, err)
	} else if err := uc.repo.SaveCanadaData(canada); err != nil {
		errs = append(errs, fmt.Errorf("failed to save CBSA data: %w", err))
	} else {
		log.Info().Int("offices", len(canada)).Msg("saved CBSA snapshot")
	}

	// Fetch and save the CBP ports; a failed CBSA refresh does not stop this one
	us, err := uc.source.FetchUSData(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("CBP refresh failed")
		errs = append(errs, err)
	} else if err := uc.repo.SaveUSData(us); err != nil {
		errs = append(errs, fmt.Errorf("failed to save CBP data: %w", err))
	} else {
		log.Info().Int("ports", len(us)).Msg("saved CBP snapshot")
	}

	// Keep serving whichever snapshot is fresh unless both sources failed
	if len(errs) == 2 {
		return fmt.Errorf("failed to refresh wait times: %w", errors.Join(errs...))
	}
	return nil
}

// GetCanadaCrossings returns the latest CBSA offices
func (uc *CrossingUseCase) GetCanadaCrossings() ([]entities.CanadaBorderCrossingTimes, error) {
	return uc.repo.GetCanadaData()
}

// GetUSCrossings returns the latest CBP ports
func (uc *CrossingUseCase) GetUSCrossings() ([]entities.BorderCrossing, error) {
	return uc.repo.GetUSData()
}

// GetLastUpdateTime returns when data was last refreshed
func (uc *CrossingUseCase) GetLastUpdateTime() (time.Time, error) {
	return uc.repo.GetLastUpdateTime()
}

// GetCrossingByPortID finds a CBP port by a 6-8 digit identifier
func (uc *CrossingUseCase) GetCrossingByPortID(id string) (entities.BorderCrossing, error) {
	// Normalize the identifier to the 6-digit CBP port number
	parts, err := uc.codec.Decode(strings.TrimSpace(id))
	if err != nil {
		return entities.BorderCrossing{}, err
	}

	ports, err := uc.repo.GetUSData()
	if err != nil {
		return entities.BorderCrossing{}, err
	}
	// Search the latest snapshot for the port
	for _, p := range ports {
		if p.PortNumber == parts.PortNumber() {
			return p, nil
		}
	}
	return entities.BorderCrossing{}, fmt.Errorf("%w: %s", ErrPortNotFound, parts.PortNumber())
}

// FormatCanadaInfo formats CBSA offices for display
func (uc *CrossingUseCase) FormatCanadaInfo(data []entities.CanadaBorderCrossingTimes) string {
	if len(data) == 0 {
		return "No Canadian wait times available."
	}

	var result strings.Builder
	result.WriteString("Entering Canada (CBSA):\n\n")
	for _, c := range data {
		result.WriteString(fmt.Sprintf("📍 %s\n", strings.ReplaceAll(c.CbsaOffice, "\n", " - ")))
		result.WriteString(fmt.Sprintf("🚗 Travellers: %s\n", c.TravellersFlow))
		result.WriteString(fmt.Sprintf("🚚 Commercial: %s\n", c.CommercialFlow))
		result.WriteString(fmt.Sprintf("🕒 Updated: %s\n\n", c.Updated.Format("2006-01-02 15:04 MST")))
	}
	return strings.TrimRight(result.String(), "\n")
}

// FormatUSInfo formats CBP ports for display
func (uc *CrossingUseCase) FormatUSInfo(data []entities.BorderCrossing) string {
	if len(data) == 0 {
		return "No US wait times available."
	}

	var result strings.Builder
	result.WriteString("Entering the US (CBP):\n\n")
	for _, c := range data {
		result.WriteString(uc.FormatCrossing(c))
		result.WriteString("\n\n")
	}
	return strings.TrimRight(result.String(), "\n")
}

// FormatCrossing formats a single CBP port
func (uc *CrossingUseCase) FormatCrossing(c entities.BorderCrossing) string {
	var result strings.Builder
	result.WriteString(fmt.Sprintf("📍 %s (%s)", c.DisplayName(), c.PortNumber))
	if c.PortStatus != "" {
		result.WriteString(fmt.Sprintf(" %s", c.PortStatus))
	}
	result.WriteString("\n")

	writeLanes(&result, "🚗 Passenger", c.PassengerVehicleLanes.Standard)
	writeLanes(&result, "🪪 NEXUS/SENTRI", c.PassengerVehicleLanes.NexusSentri)
	writeLanes(&result, "🚶 Pedestrian", c.PedestrianLanes.Standard)
	writeLanes(&result, "🚚 Commercial", c.CommercialVehicleLanes.Standard)

	if c.ConstructionNotice != "" {
		result.WriteString(fmt.Sprintf("🚧 %s\n", c.ConstructionNotice))
	}
	if !c.Date.IsZero() {
		result.WriteString(fmt.Sprintf("🕒 Updated: %s", c.Date.Format("2006-01-02 15:04 MST")))
	}
	return strings.TrimRight(result.String(), "\n")
}

func writeLanes(b *strings.Builder, label string, l *entities.Lanes) {
	if l == nil {
		return
	}
	switch {
	case l.DelayMinutes != nil:
		b.WriteString(fmt.Sprintf("%s: %d min", label, *l.DelayMinutes))
		if l.LanesOpen != nil {
			b.WriteString(fmt.Sprintf(", %d lanes open", *l.LanesOpen))
		}
		b.WriteString("\n")
	case l.OperationalStatus != "" && l.OperationalStatus != "N/A":
		b.WriteString(fmt.Sprintf("%s: %s\n", label, l.OperationalStatus))
	}
}
