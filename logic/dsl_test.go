package logic_test

import (
	"github.com/brunokim/backchain/dsl"
)

var (
	const_ = dsl.Const
	comp   = dsl.Comp
	lit    = dsl.Lit
	rule   = dsl.Rule
	svar   = dsl.SVar
	var_   = dsl.Var
)
