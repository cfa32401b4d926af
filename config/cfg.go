package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	ImagesConfig struct {
		Mode        ImageMode `yaml:"mode" validate:"gte=0"`
		MaxWidth    int       `yaml:"max_width" validate:"gte=0"`
		JPEGQuality int       `yaml:"jpeg_quality_level" validate:"min=40,max=100"`
	}

	HTMLConfig struct {
		PageTitle                    string       `yaml:"page_title"`
		ClassPrefix                  string       `yaml:"css_class_prefix" validate:"required"`
		FabricateClasses             bool         `yaml:"fabricate_css_classes"`
		GeneralCSS                   string       `yaml:"general_css"`
		AdditionalCSS                string       `yaml:"additional_css"`
		AdditionalCSSPath            string       `yaml:"additional_css_path" sanitize:"assure_file_access"`
		RestrictToSupportedNumbering bool         `yaml:"restrict_to_supported_numbering"`
		RestrictToSupportedLanguages bool         `yaml:"restrict_to_supported_languages"`
		IncludeComments              bool         `yaml:"include_comments"`
		Images                       ImagesConfig `yaml:"images"`
	}

	SimplifyConfig struct {
		RemoveComments              bool `yaml:"remove_comments"`
		RemoveContentControls       bool `yaml:"remove_content_controls"`
		RemoveSmartTags             bool `yaml:"remove_smart_tags"`
		RemoveRsidInfo              bool `yaml:"remove_rsid_info"`
		RemoveLastRenderedPageBreak bool `yaml:"remove_last_rendered_page_break"`
		RemoveBookmarks             bool `yaml:"remove_bookmarks"`
		RemoveGoBackBookmark        bool `yaml:"remove_goback_bookmark"`
		RemoveSoftHyphens           bool `yaml:"remove_soft_hyphens"`
		RemoveProofErrors           bool `yaml:"remove_proof_errors"`
		ReplaceTabsWithSpaces       bool `yaml:"replace_tabs_with_spaces"`
	}

	ReplaceConfig struct {
		Search    string `yaml:"search" validate:"required"`
		Replace   string `yaml:"replace"`
		MatchCase bool   `yaml:"match_case"`
	}

	PreprocessConfig struct {
		AcceptRevisions bool            `yaml:"accept_revisions"`
		SimplifyMarkup  bool            `yaml:"simplify_markup"`
		Simplify        SimplifyConfig  `yaml:"simplify"`
		Replace         []ReplaceConfig `yaml:"replace" validate:"dive"`
	}

	WMLConfig struct {
		DefaultCSS   string `yaml:"default_css"`
		UserCSSPath  string `yaml:"user_css_path" sanitize:"assure_file_access"`
		TemplatePath string `yaml:"template_path" sanitize:"assure_file_access"`
		RasterizeSVG bool   `yaml:"rasterize_svg"`
		FixZip       bool   `yaml:"fix_zip"`
	}

	DocumentConfig struct {
		OutputNameTemplate    string `yaml:"output_name_template"`
		FileNameTransliterate bool   `yaml:"file_name_transliterate"`
	}

	Config struct {
		Version    int              `yaml:"version" validate:"eq=1"`
		Document   DocumentConfig   `yaml:"document"`
		HTML       HTMLConfig       `yaml:"html"`
		WML        WMLConfig        `yaml:"wml"`
		Preprocess PreprocessConfig `yaml:"preprocess"`
		Logging    LoggingConfig    `yaml:"logging"`
		Reporting  ReporterConfig   `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// Only fields we defined are allowed, so yaml.Unmarshal cannot be used
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, fmt.Errorf("failed to sanitize configuration: %w", err)
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}

// ReadAdditionalCSS returns additional CSS text for HTML output: inline
// configuration value followed by content of the configured file, if any.
func (conf *HTMLConfig) ReadAdditionalCSS() (string, error) {
	css := conf.AdditionalCSS
	if conf.AdditionalCSSPath == "" {
		return css, nil
	}
	data, err := os.ReadFile(conf.AdditionalCSSPath)
	if err != nil {
		return "", fmt.Errorf("unable to read additional css from %q: %w", conf.AdditionalCSSPath, err)
	}
	if css != "" {
		css += "\n"
	}
	return css + string(data), nil
}
