package config

import (
	"fmt"
	"os"

	"wmlconv/convert/tohtml"
	"wmlconv/convert/towml"
	"wmlconv/preprocess"
)

// HTMLSettings translates configuration into WML to HTML conversion
// settings. Image delivery depends on the output location and is left to
// the caller.
func (conf *Config) HTMLSettings() (tohtml.Settings, error) {
	h := &conf.HTML
	s := tohtml.DefaultSettings()
	s.PageTitle = h.PageTitle
	s.ClassPrefix = h.ClassPrefix
	s.FabricateClasses = h.FabricateClasses
	if h.GeneralCSS != "" {
		s.GeneralCSS = h.GeneralCSS
	}
	css, err := h.ReadAdditionalCSS()
	if err != nil {
		return s, err
	}
	s.AdditionalCSS = css
	s.RestrictToSupportedNumbering = h.RestrictToSupportedNumbering
	s.RestrictToSupportedLanguages = h.RestrictToSupportedLanguages
	s.IncludeComments = h.IncludeComments
	s.Images = tohtml.ImageSettings{MaxWidth: h.Images.MaxWidth, JPEGQuality: h.Images.JPEGQuality}
	s.Preprocess = conf.Preprocess.settings()
	return s, nil
}

func (conf *PreprocessConfig) settings() preprocess.Settings {
	var repl []preprocess.Replacement
	for _, r := range conf.Replace {
		repl = append(repl, preprocess.Replacement{Search: r.Search, Replace: r.Replace, MatchCase: r.MatchCase})
	}
	return preprocess.Settings{
		AcceptRevisions: conf.AcceptRevisions,
		SimplifyMarkup:  conf.SimplifyMarkup,
		Simplify: preprocess.SimplifySettings{
			RemoveComments:              conf.Simplify.RemoveComments,
			RemoveContentControls:       conf.Simplify.RemoveContentControls,
			RemoveSmartTags:             conf.Simplify.RemoveSmartTags,
			RemoveRsidInfo:              conf.Simplify.RemoveRsidInfo,
			RemoveLastRenderedPageBreak: conf.Simplify.RemoveLastRenderedPageBreak,
			RemoveBookmarks:             conf.Simplify.RemoveBookmarks,
			RemoveGoBackBookmark:        conf.Simplify.RemoveGoBackBookmark,
			RemoveSoftHyphens:           conf.Simplify.RemoveSoftHyphens,
			RemoveProofErrors:           conf.Simplify.RemoveProofErrors,
			ReplaceTabsWithSpaces:       conf.Simplify.ReplaceTabsWithSpaces,
		},
		Replacements: repl,
	}
}

// WMLSettings translates configuration into HTML to WML conversion
// settings. Image loading depends on the source location and is left to the
// caller.
func (conf *Config) WMLSettings() (towml.Settings, error) {
	s := towml.DefaultSettings()
	if conf.WML.DefaultCSS != "" {
		s.DefaultCSS = conf.WML.DefaultCSS
	}
	s.RasterizeSVG = conf.WML.RasterizeSVG
	if conf.WML.UserCSSPath != "" {
		data, err := os.ReadFile(conf.WML.UserCSSPath)
		if err != nil {
			return s, fmt.Errorf("unable to read user css from %q: %w", conf.WML.UserCSSPath, err)
		}
		s.UserCSS = string(data)
	}
	return s, nil
}
