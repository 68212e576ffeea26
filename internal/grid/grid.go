package grid

import (
	"errors"
	"fmt"

	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/domain"
)

var ErrInvalidConfig = errors.New("考试网格配置无效")

// Grid 由配置一次性生成的时段与活跃考场
type Grid struct {
	cfg    domain.GridConfig
	slots  []domain.Slot
	cells  map[domain.Slot][]domain.Cell
	active map[domain.CellKey]struct{}
	total  int
}

func Validate(cfg domain.GridConfig) error {
	if cfg.DayCount < 1 {
		return fmt.Errorf("%w: 考试天数必须大于 0", ErrInvalidConfig)
	}
	if cfg.GradeCount < 1 {
		return fmt.Errorf("%w: 年级数必须大于 0", ErrInvalidConfig)
	}
	if cfg.RoomsPerGrade < 1 {
		return fmt.Errorf("%w: 每个年级的班级数必须大于 0", ErrInvalidConfig)
	}
	if len(cfg.PeriodCounts) != cfg.DayCount {
		return fmt.Errorf("%w: 节数配置的天数 %d 与考试天数 %d 不一致", ErrInvalidConfig, len(cfg.PeriodCounts), cfg.DayCount)
	}
	for d, row := range cfg.PeriodCounts {
		if len(row) != cfg.GradeCount {
			return fmt.Errorf("%w: 第 %d 天的年级数 %d 与配置的年级数 %d 不一致", ErrInvalidConfig, d+1, len(row), cfg.GradeCount)
		}
		for g, count := range row {
			if count < 0 {
				return fmt.Errorf("%w: 第 %d 天 %d 年级的节数不能为负数", ErrInvalidConfig, d+1, g+1)
			}
		}
	}
	return nil
}

func New(cfg domain.GridConfig) (*Grid, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	g := &Grid{
		cfg:    cfg,
		slots:  make([]domain.Slot, 0),
		cells:  make(map[domain.Slot][]domain.Cell),
		active: make(map[domain.CellKey]struct{}),
	}

	for day := 1; day <= cfg.DayCount; day++ {
		// 只要有一个年级在这一节有考试，这个时段就存在
		maxPeriod := 0
		for _, count := range cfg.PeriodCounts[day-1] {
			maxPeriod = max(maxPeriod, count)
		}

		for period := 1; period <= maxPeriod; period++ {
			slot := domain.Slot{Day: day, Period: period}
			cells := make([]domain.Cell, 0)
			for grade := 1; grade <= cfg.GradeCount; grade++ {
				if cfg.PeriodCounts[day-1][grade-1] < period {
					continue
				}
				for room := 1; room <= cfg.RoomsPerGrade; room++ {
					cells = append(cells, domain.Cell{Grade: grade, Room: room})
					g.active[domain.CellKey{Day: day, Period: period, Grade: grade, Room: room}] = struct{}{}
				}
			}
			g.slots = append(g.slots, slot)
			g.cells[slot] = cells
			g.total += len(cells)
		}
	}

	return g, nil
}

func (g *Grid) Config() domain.GridConfig {
	return g.cfg
}

// Slots 按 (day, period) 升序
func (g *Grid) Slots() []domain.Slot {
	return g.slots
}

// ActiveCells 按 (grade, room) 升序，不存在的时段返回 nil
func (g *Grid) ActiveCells(day, period int) []domain.Cell {
	return g.cells[domain.Slot{Day: day, Period: period}]
}

func (g *Grid) IsActive(key domain.CellKey) bool {
	_, ok := g.active[key]
	return ok
}

// CellCount 整个考试期间的活跃考场总数
func (g *Grid) CellCount() int {
	return g.total
}
