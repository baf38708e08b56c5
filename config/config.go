package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"bloodcell/internal/domain/diagnosis"
)

const DefaultConfigPath = "bloodcell.yml"

const (
	envAddr          = "ADDR"
	envModelPath     = "MODEL_PATH"
	envLabelsPath    = "LABELS_PATH"
	envInputSize     = "INPUT_SIZE"
	envConfidence    = "CONFIDENCE"
	envNMSThreshold  = "NMS_THRESHOLD"
	envMaxDetections = "MAX_DETECTIONS"
	envMaxUploadMB   = "MAX_UPLOAD_MB"
	envTelegramToken = "TELEGRAM_TOKEN"
	envLogLevel      = "LOG_LEVEL"
	envLogFormat     = "LOG_FORMAT"
)

type Config struct {
	Addr          string               `yaml:"addr"`
	ModelPath     string               `yaml:"model"`
	LabelsPath    string               `yaml:"labels"`
	InputSize     int                  `yaml:"inputSize"`
	Confidence    float32              `yaml:"confidence"`
	NMSThreshold  float32              `yaml:"nmsThreshold"`
	MaxDetections int                  `yaml:"maxDetections"`
	MaxUploadMB   int64                `yaml:"maxUploadMB"`
	TelegramToken string               `yaml:"-"`
	LogLevel      string               `yaml:"logLevel"`
	LogFormat     string               `yaml:"logFormat"`
	Thresholds    diagnosis.Thresholds `yaml:"thresholds"`
}

// Default настройки без файла и переменных окружения
func Default() Config {
	return Config{
		Addr:          ":8080",
		ModelPath:     "models/best.onnx",
		LabelsPath:    "models/data.yaml",
		InputSize:     640,
		Confidence:    0.25,
		NMSThreshold:  0.7,
		MaxDetections: 300,
		MaxUploadMB:   10,
		LogLevel:      "info",
		LogFormat:     "text",
		Thresholds:    diagnosis.DefaultThresholds(),
	}
}

// Load собирает конфиг: значения по умолчанию, затем YAML-файл (если есть), затем окружение.
// Флаги командной строки накладываются поверх вызывающим кодом.
func Load(path string) (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = DefaultConfigPath
	}

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Addr, envAddr)
	setString(&c.ModelPath, envModelPath)
	setString(&c.LabelsPath, envLabelsPath)
	setString(&c.TelegramToken, envTelegramToken)
	setString(&c.LogLevel, envLogLevel)
	setString(&c.LogFormat, envLogFormat)

	if v := strings.TrimSpace(os.Getenv(envInputSize)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", envInputSize, err)
		}
		c.InputSize = n
	}
	if v := strings.TrimSpace(os.Getenv(envMaxDetections)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", envMaxDetections, err)
		}
		c.MaxDetections = n
	}
	if v := strings.TrimSpace(os.Getenv(envMaxUploadMB)); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parse %s: %w", envMaxUploadMB, err)
		}
		c.MaxUploadMB = n
	}
	if err := setFloat(&c.Confidence, envConfidence); err != nil {
		return err
	}
	if err := setFloat(&c.NMSThreshold, envNMSThreshold); err != nil {
		return err
	}
	return nil
}

// Validate проверяет, что значения пригодны для запуска
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("listen address cannot be empty")
	}
	if c.ModelPath == "" {
		return errors.New("model path is required")
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("confidence must be within [0,1] (got %.2f)", c.Confidence)
	}
	if c.MaxDetections < 1 {
		return fmt.Errorf("maxDetections must be positive (got %d)", c.MaxDetections)
	}
	if c.MaxUploadMB < 1 {
		return fmt.Errorf("maxUploadMB must be positive (got %d)", c.MaxUploadMB)
	}
	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}
	return nil
}

// MaxUploadBytes лимит тела запроса в байтах
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setFloat(dst *float32, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	*dst = float32(f)
	return nil
}
