// Package exclusion 负责解析教师的不可监考规则并提供查询。
//
// 规则文本以分号分隔，每一项可以是：
//
//	D1P2        第 1 天第 2 节不可监考
//	2-3 / C2-3  2 年级 3 班（任何时间）不可监考
//	D1P2@2-3    仅第 1 天第 2 节的 2 年级 3 班不可监考
//
// 无法识别的项会被直接丢弃，不会返回错误。
package exclusion

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/domain"
)

var (
	timePattern = regexp.MustCompile(`^D(\d+)P(\d+)$`)
	roomPattern = regexp.MustCompile(`^C?(\d+)-(\d+)$`)
)

type Record struct {
	Name string
	Text string
}

// Rules 单个教师的全部规则
type Rules struct {
	Times     map[domain.Slot]struct{}
	Rooms     map[domain.Cell]struct{}
	TimeRooms map[domain.CellKey]struct{}
}

func newRules() *Rules {
	return &Rules{
		Times:     make(map[domain.Slot]struct{}),
		Rooms:     make(map[domain.Cell]struct{}),
		TimeRooms: make(map[domain.CellKey]struct{}),
	}
}

func (r *Rules) Len() int {
	return len(r.Times) + len(r.Rooms) + len(r.TimeRooms)
}

func (r *Rules) Matches(day, period, grade, room int) bool {
	if _, ok := r.Times[domain.Slot{Day: day, Period: period}]; ok {
		return true
	}
	if _, ok := r.Rooms[domain.Cell{Grade: grade, Room: room}]; ok {
		return true
	}
	_, ok := r.TimeRooms[domain.CellKey{Day: day, Period: period, Grade: grade, Room: room}]
	return ok
}

// ParseText 解析一段规则文本
func ParseText(raw string) *Rules {
	rules := newRules()
	rules.add(raw)
	return rules
}

func (r *Rules) add(raw string) {
	for _, tok := range strings.Split(raw, ";") {
		up := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(tok), " ", ""))
		if up == "" {
			continue
		}

		// 带 @ 的只记录为组合规则，不拆成更粗的两条
		if timePart, roomPart, found := strings.Cut(up, "@"); found {
			slot, ok1 := parseTime(timePart)
			cell, ok2 := parseRoom(roomPart)
			if ok1 && ok2 {
				r.TimeRooms[domain.CellKey{Day: slot.Day, Period: slot.Period, Grade: cell.Grade, Room: cell.Room}] = struct{}{}
			}
			continue
		}

		if slot, ok := parseTime(up); ok {
			r.Times[slot] = struct{}{}
			continue
		}
		if cell, ok := parseRoom(up); ok {
			r.Rooms[cell] = struct{}{}
		}
	}
}

func parseTime(s string) (domain.Slot, bool) {
	m := timePattern.FindStringSubmatch(s)
	if m == nil {
		return domain.Slot{}, false
	}
	day, ok1 := positive(m[1])
	period, ok2 := positive(m[2])
	if !ok1 || !ok2 {
		return domain.Slot{}, false
	}
	return domain.Slot{Day: day, Period: period}, true
}

func parseRoom(s string) (domain.Cell, bool) {
	m := roomPattern.FindStringSubmatch(s)
	if m == nil {
		return domain.Cell{}, false
	}
	grade, ok1 := positive(m[1])
	room, ok2 := positive(m[2])
	if !ok1 || !ok2 {
		return domain.Cell{}, false
	}
	return domain.Cell{Grade: grade, Room: room}, true
}

func positive(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Index 教师名 -> 规则
type Index struct {
	rules map[string]*Rules
}

func Build(records []Record) *Index {
	idx := &Index{rules: make(map[string]*Rules, len(records))}
	for _, record := range records {
		rules, exists := idx.rules[record.Name]
		if !exists {
			rules = newRules()
			idx.rules[record.Name] = rules
		}
		rules.add(record.Text)
	}
	return idx
}

// FromRoster 用名单构建索引
func FromRoster(roster []*domain.StaffMember) *Index {
	records := make([]Record, len(roster))
	for i, s := range roster {
		records[i] = Record{Name: s.Name, Text: s.ExclusionText}
	}
	return Build(records)
}

func (idx *Index) IsExcluded(name string, day, period, grade, room int) bool {
	rules, exists := idx.rules[name]
	if !exists {
		return false
	}
	return rules.Matches(day, period, grade, room)
}

func (idx *Index) Has(name string) bool {
	_, exists := idx.rules[name]
	return exists
}

// Rules 返回某个教师的规则，不存在时返回空规则
func (idx *Index) Rules(name string) *Rules {
	if rules, exists := idx.rules[name]; exists {
		return rules
	}
	return newRules()
}
