package intake

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/stark/internal/achievements"
	"github.com/JaimeStill/stark/internal/catalog"
	"github.com/JaimeStill/stark/internal/courses"
	"github.com/JaimeStill/stark/internal/placements"
	"github.com/JaimeStill/stark/internal/profile"
	"github.com/JaimeStill/stark/pkg/repository"
)

// Mapper persists confirmed certificate fields as a placement or course
// plus one achievement per resolvable milestone code.
type Mapper struct {
	db      *sql.DB
	catalog catalog.System
	logger  *slog.Logger
	now     func() time.Time
}

func NewMapper(db *sql.DB, cat catalog.System, logger *slog.Logger) *Mapper {
	return &Mapper{
		db:      db,
		catalog: cat,
		logger:  logger.With("system", "mapper"),
		now:     time.Now,
	}
}

// MapCourse creates a course and its achievements and returns the course
// id. The period end is the certificate date. The start date is kept only
// for courses shown as an interval.
func (m *Mapper) MapCourse(ctx context.Context, cmd CourseCommand) (string, error) {
	show := false
	if cmd.ShowOnTimeline != nil {
		show = *cmd.ShowOnTimeline
	}

	cc := courses.Command{
		Title:                    cmd.Title,
		City:                     cmd.City,
		CertificateDate:          cmd.Period.EndISO,
		StartDate:                cmd.Period.StartISO,
		EndDate:                  cmd.Period.EndISO,
		Note:                     cmd.Description,
		ShowOnTimeline:           &show,
		ShowAsInterval:           cmd.ShowAsInterval,
		SigningRole:              cmd.SigningRole,
		SupervisorName:           cmd.SupervisorName,
		SupervisorSite:           cmd.SupervisorSite,
		SupervisorSpeciality:     cmd.SupervisorSpeciality,
		SupervisorPersonalNumber: cmd.SupervisorPersonalNumber,
	}
	if err := cc.Validate(); err != nil {
		return "", err
	}
	if cc.SigningRole == courses.RoleCourseLeader {
		cc.CourseLeaderName = cc.SupervisorName
		cc.CourseLeaderSite = cc.SupervisorSite
		cc.CourseLeaderSpeciality = cc.SupervisorSpeciality
	}

	codes, err := m.codeMap(ctx)
	if err != nil {
		return "", err
	}

	c := cc.Course(uuid.NewString())
	links := m.link(codes, cmd.Codes, c.Date())
	for i := range links {
		links[i].CourseID = c.ID
	}

	_, err = repository.WithTx(ctx, m.db, func(tx *sql.Tx) (struct{}, error) {
		if err := courses.Insert(ctx, tx, c); err != nil {
			return struct{}{}, fmt.Errorf("insert course: %w", err)
		}
		return struct{}{}, insertAll(ctx, tx, links)
	})
	if err != nil {
		return "", err
	}

	m.logger.Info("course mapped", "id", c.ID, "achievements", len(links), "codes", len(cmd.Codes))
	return c.ID, nil
}

// MapPlacement creates a placement and its achievements and returns the
// placement id. A period with one date is taken as a single day.
func (m *Mapper) MapPlacement(ctx context.Context, cmd PlacementCommand) (string, error) {
	start, end := cmd.Period.StartISO, cmd.Period.EndISO
	if start == "" {
		start = end
	}
	if end == "" {
		end = start
	}

	pc := placements.Command{
		Clinic:               cmd.Clinic,
		StartDate:            start,
		EndDate:              end,
		Attendance:           cmd.Attendance,
		Supervisor:           cmd.Supervisor,
		SupervisorSpeciality: cmd.SupervisorSpeciality,
		SupervisorSite:       cmd.SupervisorSite,
		Note:                 cmd.Description,
	}
	if err := pc.Validate(); err != nil {
		return "", err
	}

	codes, err := m.codeMap(ctx)
	if err != nil {
		return "", err
	}

	p := pc.Placement(uuid.NewString())
	links := m.link(codes, cmd.Codes, p.EndDate)
	for i := range links {
		links[i].PlacementID = p.ID
	}

	_, err = repository.WithTx(ctx, m.db, func(tx *sql.Tx) (struct{}, error) {
		if err := placements.Insert(ctx, tx, p); err != nil {
			return struct{}{}, fmt.Errorf("insert placement: %w", err)
		}
		return struct{}{}, insertAll(ctx, tx, links)
	})
	if err != nil {
		return "", err
	}

	m.logger.Info("placement mapped", "id", p.ID, "achievements", len(links), "codes", len(cmd.Codes))
	return p.ID, nil
}

// codeMap indexes the active catalog by upper-cased milestone code. The
// catalog is read fresh from the stored profile. Without a profile the map
// is empty.
func (m *Mapper) codeMap(ctx context.Context) (map[string]string, error) {
	p, err := profile.Get(ctx, m.db)
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}

	byCode := map[string]string{}
	if p == nil {
		return byCode, nil
	}

	cat, err := m.catalog.Load(p.GoalsVersion, p.Specialty)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	for _, ms := range cat.Milestones {
		if ms.Code != "" && ms.ID != "" {
			byCode[strings.ToUpper(ms.Code)] = ms.ID
		}
	}
	return byCode, nil
}

// link builds one achievement per code found in byCode. Unknown codes are
// dropped.
func (m *Mapper) link(byCode map[string]string, codes []string, date string) []achievements.Achievement {
	if date == "" {
		date = m.now().Format(time.DateOnly)
	}

	var out []achievements.Achievement
	for _, code := range codes {
		id, ok := byCode[strings.ToUpper(strings.TrimSpace(code))]
		if !ok {
			continue
		}
		out = append(out, achievements.Achievement{
			ID:          uuid.NewString(),
			MilestoneID: id,
			Date:        date,
		})
	}
	return out
}

func insertAll(ctx context.Context, tx *sql.Tx, links []achievements.Achievement) error {
	for _, a := range links {
		if err := achievements.Insert(ctx, tx, a); err != nil {
			return fmt.Errorf("insert achievement: %w", err)
		}
	}
	return nil
}
