package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/config"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/repository"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/seed"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var examPlanID int64
	var file string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机考试计划, 2: 为考试计划生成随机名单, 3: 从 CSV 导入名单)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Int64Var(&examPlanID, "exam-plan-id", 0, "名单所属的考试计划 ID")
	flag.StringVar(&file, "file", "./roster.csv", "要导入的 CSV 文件路径")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", "error", err)
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的考试计划数量")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			plan := utils.GenerateRandomExamPlan()
			if err := repo.CreateExamPlan(plan); err != nil {
				slog.Error("无法插入考试计划", "error", err)
				continue
			}
			cnt++
		}

		slog.Info("插入考试计划成功", "count", cnt)
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的教师数量")
			return
		}

		plan, err := repo.GetExamPlanByID(examPlanID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				slog.Error("指定的考试计划不存在", "exam_plan_id", examPlanID)
			default:
				slog.Error("无法获取考试计划", "error", err)
			}
			return
		}

		roster := utils.GenerateRandomRoster(n, plan.Grid, cfg.Email.StaffDomain)
		if err := repo.ReplaceRoster(plan.ID, roster); err != nil {
			slog.Error("无法插入名单", "error", err)
			return
		}

		slog.Info("插入随机名单成功", "exam_plan_id", plan.ID, "count", len(roster))
	case 3:
		if _, err := repo.GetExamPlanByID(examPlanID); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				slog.Error("指定的考试计划不存在", "exam_plan_id", examPlanID)
			default:
				slog.Error("无法获取考试计划", "error", err)
			}
			return
		}

		count, err := seed.ImportRoster(repo, examPlanID, file)
		if err != nil {
			slog.Error("导入名单失败", "file", file, "error", err)
			return
		}

		slog.Info("导入名单成功", "exam_plan_id", examPlanID, "count", count)
	default:
		slog.Error("指定的操作非法")
	}
}
