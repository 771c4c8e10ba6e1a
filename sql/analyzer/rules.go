package analyzer

// onceBeforeRules are applied once, before the default rules.
func onceBeforeRules(cfg Config) []Rule {
	if !cfg.UseCalc {
		return nil
	}

	return []Rule{
		{"project_to_calc", projectToCalc},
		{"filter_to_calc", filterToCalc},
	}
}

// defaultRules are applied until the plan does not change.
func defaultRules() []Rule {
	return []Rule{
		{"reduce_filter_expressions", reduceFilterExpressions},
		{"reduce_project_expressions", reduceProjectExpressions},
		{"reduce_join_expressions", reduceJoinExpressions},
		{"merge_calcs", mergeCalcs},
		{"reduce_calc_expressions", reduceCalcExpressions},
		{"remove_trivial_calc", removeTrivialCalc},
	}
}

// validationRules check the resulting plan.
func validationRules(cfg Config) []Rule {
	if !cfg.Validate {
		return nil
	}

	return []Rule{
		{"validate_programs", validatePrograms},
	}
}
