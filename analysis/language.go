// Copyright © 2024 The ELPS authors

package analysis

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/emmanuelbernard/ceylon-spec/model"
	"github.com/emmanuelbernard/ceylon-spec/parser"
	"go.uber.org/multierr"
)

// languageFile names the embedded unit in diagnostics.
const languageFile = "ceylon/language/language.ceylon"

//go:embed language.ceylon
var languageSource string

// loadLanguage runs the embedded language unit through every pass.  The
// language module must analyze without errors.
func (c *Context) loadLanguage() error {
	cu, err := parser.ParseFile(languageFile, strings.NewReader(languageSource))
	if err != nil {
		return fmt.Errorf("language module: %w", err)
	}
	pkg := c.Package(model.LanguagePackageName)
	c.Language = model.NewModule(model.LanguagePackageName)
	c.Language.AddPackage(pkg)

	pu := NewPhasedUnit(languageFile, cu, pkg)
	c.languageUnit = pu
	c.Bind(pu)
	b, missing := model.LoadBuiltins(pkg)
	if len(missing) > 0 {
		return fmt.Errorf("language module: missing declarations: %s", strings.Join(missing, ", "))
	}
	c.Builtins = b
	if err := c.ResolveModule(pu); err != nil {
		return fmt.Errorf("language module: %w", err)
	}
	if err := c.ResolveNames(pu); err != nil {
		return fmt.Errorf("language module: %w", err)
	}
	c.CheckExpressions(pu)
	var errs error
	for _, d := range pu.Errors() {
		errs = multierr.Append(errs, errors.New(d.String()))
	}
	return errs
}
