package utils

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

// GenerateMailboxFromChineseName 用姓名的拼音生成邮箱前缀
func GenerateMailboxFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	mailbox := strings.Join(pinyinArray, ".")

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		mailbox += string(digits[rand.Intn(len(digits))])
	}

	return mailbox
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

// GenerateRandomExclusionText 随机生成 0~3 条规则，偶尔混入无法识别的内容
func GenerateRandomExclusionText(cfg domain.GridConfig) string {
	n := rand.Intn(4)
	tokens := make([]string, 0, n)

	for i := 0; i < n; i++ {
		day := rand.Intn(cfg.DayCount) + 1
		period := rand.Intn(3) + 1
		grade := rand.Intn(cfg.GradeCount) + 1
		room := rand.Intn(cfg.RoomsPerGrade) + 1

		switch rand.Intn(4) {
		case 0:
			tokens = append(tokens, fmt.Sprintf("D%dP%d", day, period))
		case 1:
			tokens = append(tokens, fmt.Sprintf("C%d-%d", grade, room))
		case 2:
			tokens = append(tokens, fmt.Sprintf("D%dP%d@%d-%d", day, period, grade, room))
		case 3:
			tokens = append(tokens, "D"+GenerateRandomID(2, 0))
		}
	}

	return strings.Join(tokens, "; ")
}

// GenerateRandomRoster 生成 n 个不重名的教师，约三分之一设置了优先级
func GenerateRandomRoster(n int, cfg domain.GridConfig, emailDomainName string) []*domain.StaffMember {
	roster := make([]*domain.StaffMember, 0, n)
	seen := make(map[string]bool, n)

	for len(roster) < n {
		name := GenerateRandomChineseName()
		if seen[name] {
			continue
		}
		seen[name] = true

		staff := &domain.StaffMember{
			Name:          name,
			ExclusionText: GenerateRandomExclusionText(cfg),
			Email:         GenerateMailboxFromChineseName(name) + "@" + emailDomainName,
		}
		if rand.Intn(3) == 0 {
			priority := rand.Intn(5) + 1
			staff.Priority = &priority
		}

		roster = append(roster, staff)
	}

	return roster
}

func GenerateRandomGridConfig() domain.GridConfig {
	cfg := domain.GridConfig{
		DayCount:      rand.Intn(4) + 1,
		GradeCount:    rand.Intn(3) + 1,
		RoomsPerGrade: rand.Intn(8) + 1,
	}

	cfg.PeriodCounts = make([][]int, cfg.DayCount)
	for d := range cfg.PeriodCounts {
		cfg.PeriodCounts[d] = make([]int, cfg.GradeCount)
		for g := range cfg.PeriodCounts[d] {
			cfg.PeriodCounts[d][g] = rand.Intn(4)
		}
	}

	return cfg
}

func GenerateRandomExamPlan() *domain.ExamPlan {
	strategies := []domain.Strategy{domain.StrategyLoadSorted, domain.StrategyCursor}

	return &domain.ExamPlan{
		Name:           "考试计划" + GenerateRandomID(3, 3),
		Description:    "考试计划描述" + GenerateRandomID(20, 10),
		Grid:           GenerateRandomGridConfig(),
		AllowMultiRoom: rand.Intn(4) == 0,
		AllowDualRole:  rand.Intn(4) == 0,
		Strategy:       strategies[rand.Intn(len(strategies))],
	}
}
