package main

// Manual harness for the question-generation prompt:
//   go run ./cmd/prompttest -source lecture.pdf -topic "Newtonian Mechanics"

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"edu-backend/internal/extract"
	"edu-backend/internal/llm"
	openai "edu-backend/internal/llm/openai"
	"edu-backend/internal/shared/config"
)

func main() {
	cfg := config.Load()

	sourcePath := flag.String("source", "", "Path to source material (pdf or docx)")
	topicTitle := flag.String("topic", "", "Topic title for the generated questions")
	easy := flag.Int("easy", 2, "Easy question count")
	medium := flag.Int("medium", 2, "Medium question count")
	hardMCQ := flag.Int("hard-mcq", 1, "Hard MCQ question count")
	hard := flag.Int("hard", 1, "Hard open question count")
	language := flag.String("language", "", "Question language (optional)")
	outPath := flag.String("out", "", "Path to write raw JSON output (optional)")
	model := flag.String("model", cfg.LLMModel, "LLM model")
	flag.Parse()

	if strings.TrimSpace(*sourcePath) == "" {
		exitErr("source path is required")
	}

	mimeType, err := mimeFromExt(*sourcePath)
	if err != nil {
		exitErr(err.Error())
	}

	sourceBytes, err := os.ReadFile(*sourcePath)
	if err != nil {
		exitErr(fmt.Sprintf("read source: %v", err))
	}
	fileName := filepath.Base(*sourcePath)

	contextText, err := extract.ExtractTextFromBytes(context.Background(), sourceBytes, mimeType, fileName)
	if err != nil {
		exitErr(fmt.Sprintf("extract source text: %v", err))
	}

	client, err := openai.NewClient(os.Getenv("OPENAI_API_KEY"), *model)
	if err != nil {
		exitErr(err.Error())
	}

	input := llm.GenerateInput{
		TopicTitle:   *topicTitle,
		ContextText:  contextText,
		EasyCount:    *easy,
		MediumCount:  *medium,
		HardMCQCount: *hardMCQ,
		HardCount:    *hard,
		Language:     *language,
	}

	raw, err := client.GenerateQuestions(context.Background(), input)
	if err != nil {
		exitErr(fmt.Sprintf("llm generate: %v", err))
	}

	var payload struct {
		Questions []json.RawMessage `json:"questions"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		exitErr(fmt.Sprintf("invalid json: %v", err))
	}
	if len(payload.Questions) == 0 {
		exitErr("no questions in output")
	}

	pretty, err := prettyJSON(raw)
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, pretty, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}

	fmt.Printf("generated %d questions\n", len(payload.Questions))
	fmt.Println(string(pretty))
}

func mimeFromExt(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf", nil
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document", nil
	default:
		return "", fmt.Errorf("unsupported file extension: %s", filepath.Ext(path))
	}
}

func prettyJSON(raw json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
