package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cwd-comments/cwd-backend/config"
	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/cwd-comments/cwd-backend/internal/app/repository"
	"github.com/cwd-comments/cwd-backend/internal/app/service"
	"github.com/cwd-comments/cwd-backend/internal/db"
)

func main() {
	yes := flag.Bool("y", false, "skip confirmation")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: import [-y] <comments.json|comments.xlsx>")
		flag.PrintDefaults()
	}
	flag.Parse()

	// 명령줄 인자 확인
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}
	filePath := flag.Arg(0)

	// 설정 로드
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// 파일 읽기 (xlsx 는 내보내기 형식, json 은 native/Twikoo/Artalk)
	fmt.Printf("Reading file: %s\n", filePath)
	comments, err := readComments(filePath)
	if err != nil {
		log.Fatal("Failed to read comments:", err)
	}
	fmt.Printf("Total comments to import: %d\n", len(comments))

	if !*yes && !confirm() {
		fmt.Println("Import cancelled.")
		return
	}

	// DB 연결
	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	conn := db.GetDB()
	settings := service.NewSettingsService(repository.NewSettingRepository(conn))
	importer := service.NewAdminCommentService(repository.NewCommentRepository(conn), settings, nil, nil)

	result, err := importer.ImportParsed(comments)
	if err != nil {
		log.Fatal("Failed to import comments:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Println(result.Message)
}

func readComments(filePath string) ([]*model.Comment, error) {
	now := time.Now()

	if strings.EqualFold(filepath.Ext(filePath), ".xlsx") {
		f, err := os.Open(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open XLSX file: %w", err)
		}
		defer f.Close()
		return service.ReadCommentsXLSX(f, now)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}
	return service.ParseImport(data, now)
}

func confirm() bool {
	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "yes" || answer == "y"
}
