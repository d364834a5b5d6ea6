// Copyright 2021 - 2025 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rule

import (
	"github.com/matrixorigin/cascade/pkg/container/types"
	"github.com/matrixorigin/cascade/pkg/errno"
	"github.com/matrixorigin/cascade/pkg/sql/errors"
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/function"
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/memo"
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/operator"
)

// SplitAggregateRule decomposes one global, unsplit aggregate into a
// chain of 2 to 4 physical aggregation phases:
//
//	LOCAL -> GLOBAL
//	LOCAL -> DISTINCT_GLOBAL -> GLOBAL
//	LOCAL -> DISTINCT_GLOBAL -> DISTINCT_LOCAL -> GLOBAL
//
// The two-phase chain handles plain aggregates and the algebraic
// single-column distinct rewrite (count(distinct x) becomes
// multi_distinct_count(x)). The longer chains separate distinct
// evaluation into its own shuffle so duplicates collapse exactly once
// across the cluster before the final merge. Every emitted node is
// marked split, so the rule is idempotent.
type SplitAggregateRule struct{}

func NewSplitAggregateRule() *SplitAggregateRule {
	return &SplitAggregateRule{}
}

func (r *SplitAggregateRule) Name() string {
	return "SplitAggregate"
}

func (r *SplitAggregateRule) Pattern() *Pattern {
	return NewPattern(operator.LogicalAggregate, PatternAny())
}

func (r *SplitAggregateRule) Check(ctx *OptimizerContext, expr *memo.OptExpression) bool {
	agg := expr.Op().Aggregation
	return agg.AggType.IsGlobal() && !agg.IsSplit
}

func (r *SplitAggregateRule) Transform(ctx *OptimizerContext, expr *memo.OptExpression) ([]*memo.OptExpression, error) {
	agg := expr.Op().Aggregation
	child := expr.Input(0)

	// a limit below the aggregate pins evaluation to a single node:
	// splitting would apply the limit per partition and change the rows
	// that survive
	if child.Op().HasLimit() {
		return nil, nil
	}

	distinctMappings, distinctPositions := collectDistinctMappings(agg)

	if !r.mustGenerateMultiStage(child, distinctMappings) {
		hint := ctx.SessionVariable.AggregationStage
		if hint == 1 {
			return nil, nil
		}
		if hint == 0 && childInSinglePartition(child) {
			return nil, nil
		}
	}

	if err := checkDistinctCompatibility(distinctMappings); err != nil {
		return nil, err
	}

	n := len(distinctMappings)
	if n == 1 || (n > 1 && distinctMappingsShareColumns(distinctMappings)) {
		return r.implementDistinctSeparation(ctx, expr, distinctMappings[0], distinctPositions[0])
	}
	return r.implementTwoStageAgg(ctx, expr, n)
}

// mustGenerateMultiStage reports the cases a single-stage aggregate
// cannot evaluate at all, overriding the hint:
//
//	(a) the child is a grouping-sets expansion;
//	(b) a distinct argument is array typed, which is only computable
//	    through intermediate-state merging;
//	(c) more than one multi-column distinct call exists.
func (r *SplitAggregateRule) mustGenerateMultiStage(child *memo.OptExpression, distinct []operator.AggMapping) bool {
	if child.Op().Type == operator.LogicalRepeat {
		return true
	}
	multiColumn := 0
	for _, m := range distinct {
		for _, arg := range m.Call.Children {
			if arg.ScalarType().IsArray() {
				return true
			}
		}
		if len(m.Call.Children) > 1 {
			multiColumn++
		}
	}
	return multiColumn > 1
}

func childInSinglePartition(child *memo.OptExpression) bool {
	prop := child.LogicalProperty()
	return prop != nil && prop.ExecuteInSinglePartition
}

// collectDistinctMappings returns the distinct calls, skipping calls
// whose arguments are wholly constant: constants need no distinct
// evaluation. Positions index into agg.Aggregations.
func collectDistinctMappings(agg *operator.AggregationOperator) ([]operator.AggMapping, []int) {
	var mappings []operator.AggMapping
	var positions []int
	for i, m := range agg.Aggregations {
		if m.Call.Distinct && !m.Call.IsConstant() {
			mappings = append(mappings, m)
			positions = append(positions, i)
		}
	}
	return mappings, positions
}

// checkDistinctCompatibility rejects multiple multi-column distinct
// calls over differing column sets. No decomposition can evaluate them
// in one pass, so this is a planning error for the user, not a planner
// choice.
func checkDistinctCompatibility(distinct []operator.AggMapping) error {
	if len(distinct) <= 1 {
		return nil
	}
	hasMultiColumn := false
	for _, m := range distinct {
		if len(m.Call.Children) > 1 {
			hasMultiColumn = true
			break
		}
	}
	if hasMultiColumn && !distinctMappingsShareColumns(distinct) {
		return errors.Newf(errno.GroupingError,
			"the query contains multiple distinct aggregate calls over different multi-column argument sets, which cannot be planned")
	}
	return nil
}

func distinctMappingsShareColumns(distinct []operator.AggMapping) bool {
	first := distinct[0].Call.UsedColumns()
	for _, m := range distinct[1:] {
		if !first.Equal(m.Call.UsedColumns()) {
			return false
		}
	}
	return true
}

// implementDistinctSeparation plans the single (or column-sharing)
// distinct call case into explicit phase separation, picking the chain
// shape from the grouping keys and statistics.
func (r *SplitAggregateRule) implementDistinctSeparation(
	ctx *OptimizerContext, expr *memo.OptExpression,
	distinctMapping operator.AggMapping, distinctPos int,
) ([]*memo.OptExpression, error) {
	agg := expr.Op().Aggregation
	distinctColumns := distinctArgColumns(ctx, distinctMapping.Call)

	// an explicit two-stage hint wins whenever the algebraic
	// multi-distinct rewrite can express the call
	if ctx.SessionVariable.AggregationStage == 2 && canGenerateTwoStageAggregate(distinctMapping.Call, distinctColumns) {
		return r.implementTwoStageAgg(ctx, expr, 1)
	}

	switch {
	case len(agg.GroupingKeys) == 0:
		return r.implementFourPhase(ctx, expr, distinctColumns, distinctPos, nil), nil
	case isGroupByAllConstant(expr):
		return r.implementFourPhaseConstantGroupBy(ctx, expr, distinctColumns, distinctPos), nil
	default:
		if expr.Op().HasLimit() || r.hasAggregateEffect(ctx, expr) {
			return r.implementThreePhase(ctx, expr, distinctColumns, distinctPos), nil
		}
		return r.implementFourPhase(ctx, expr, distinctColumns, distinctPos, agg.GroupingKeys), nil
	}
}

// canGenerateTwoStageAggregate limits the algebraic rewrite to a single
// non-array column of a count or sum.
func canGenerateTwoStageAggregate(call *operator.Call, distinctColumns []*operator.ColumnRef) bool {
	if len(distinctColumns) != 1 {
		return false
	}
	if distinctColumns[0].Typ.IsArray() {
		return false
	}
	return call.FnName == function.Count || call.FnName == function.Sum
}

// distinctArgColumns lists the argument columns of a distinct call in
// argument order, first occurrence wins.
func distinctArgColumns(ctx *OptimizerContext, call *operator.Call) []*operator.ColumnRef {
	var cols []*operator.ColumnRef
	seen := make(map[int]bool)
	appendRef := func(ref *operator.ColumnRef) {
		if ref != nil && !seen[ref.ID] {
			seen[ref.ID] = true
			cols = append(cols, ref)
		}
	}
	for _, arg := range call.Children {
		if ref, ok := arg.(*operator.ColumnRef); ok {
			appendRef(ref)
			continue
		}
		for _, id := range arg.UsedColumns().ColumnIDs() {
			appendRef(ctx.ColumnRefFactory.ColumnRef(id))
		}
	}
	return cols
}

// isGroupByAllConstant reports whether every grouping key resolves to a
// constant through the child's projection.
func isGroupByAllConstant(expr *memo.OptExpression) bool {
	agg := expr.Op().Aggregation
	proj := expr.Input(0).Op().Projection
	if len(agg.GroupingKeys) == 0 || proj == nil {
		return false
	}
	mapping := proj.ColumnRefMap()
	for _, key := range agg.GroupingKeys {
		if !operator.ReplaceColumnRefs(key, mapping).IsConstant() {
			return false
		}
	}
	return true
}

// hasAggregateEffect reports whether grouping reduces cardinality
// sharply enough that a shorter chain pays off. Unknown statistics on
// any grouping key answer false, keeping the conservative shape.
func (r *SplitAggregateRule) hasAggregateEffect(ctx *OptimizerContext, expr *memo.OptExpression) bool {
	out := expr.Statistics()
	in := expr.Input(0).Statistics()
	if out == nil || in == nil {
		return false
	}
	for _, key := range expr.Op().Aggregation.GroupingKeys {
		if in.ColumnStatistic(key.ID).IsUnknown() {
			return false
		}
	}
	return out.OutputRowCount*ctx.SessionVariable.LowAggregateEffectCoefficient < in.OutputRowCount
}

// implementTwoStageAgg emits LOCAL -> GLOBAL. A lone distinct call is
// first rewritten to its duplicate-insensitive multi_distinct
// counterpart; more than one distinct call reaching this path means an
// upstream rewrite was skipped, which is a planner bug.
func (r *SplitAggregateRule) implementTwoStageAgg(ctx *OptimizerContext, expr *memo.OptExpression, distinctCount int) ([]*memo.OptExpression, error) {
	if distinctCount > 1 {
		panic(errors.Newf(errno.InternalError,
			"two-stage aggregation over %d distinct calls; multi-distinct rewrite missing", distinctCount))
	}
	old := expr.Op()
	agg := old.Aggregation

	mappings := make([]operator.AggMapping, len(agg.Aggregations))
	for i, m := range agg.Aggregations {
		if m.Call.Distinct && !m.Call.IsConstant() {
			mappings[i] = operator.AggMapping{Ref: m.Ref, Call: rewriteDistinctAggFn(m.Call)}
		} else {
			mappings[i] = m
		}
	}

	localType := operator.AggLocal
	localMappings := createNormalAgg(operator.AggLocal, mappings)
	localOp := operator.AggregationPatch{
		AggType:        &localType,
		MarkSplit:      true,
		Aggregations:   &localMappings,
		DropPredicate:  true,
		DropLimit:      true,
		DropProjection: true,
	}.Apply(old)

	globalType := operator.AggGlobal
	globalMappings := createNormalAgg(operator.AggGlobal, mappings)
	globalOp := operator.AggregationPatch{
		AggType:      &globalType,
		MarkSplit:    true,
		Aggregations: &globalMappings,
	}.Apply(old)

	result := memo.NewOptExpression(globalOp,
		memo.NewOptExpression(localOp, expr.Input(0)))
	return []*memo.OptExpression{result}, nil
}

// implementThreePhase emits LOCAL -> DISTINCT_GLOBAL -> GLOBAL. The
// first two phases group by the original keys plus the distinct
// columns and partition by the original keys, so the final merge
// runs colocated after a single shuffle.
func (r *SplitAggregateRule) implementThreePhase(
	ctx *OptimizerContext, expr *memo.OptExpression,
	distinctColumns []*operator.ColumnRef, distinctPos int,
) []*memo.OptExpression {
	old := expr.Op()
	agg := old.Aggregation
	merged := mergeGroupingKeys(agg.GroupingKeys, distinctColumns)

	localOp := r.buildFirstPhase(old, operator.AggLocal, merged, agg.GroupingKeys, distinctPos)
	distinctGlobalOp := r.buildFirstPhase(old, operator.AggDistinctGlobal, merged, agg.GroupingKeys, distinctPos)
	globalOp := r.buildFinalPhase(old, createDistinctAggForSecondPhase(operator.AggGlobal, agg.Aggregations), agg.GroupingKeys, distinctPos)

	result := memo.NewOptExpression(globalOp,
		memo.NewOptExpression(distinctGlobalOp,
			memo.NewOptExpression(localOp, expr.Input(0))))
	return []*memo.OptExpression{result}
}

// implementFourPhase emits the full chain
// LOCAL -> DISTINCT_GLOBAL -> DISTINCT_LOCAL -> GLOBAL. groupingKeys is
// nil for the no-GROUP BY shape; otherwise the real keys are retained
// throughout and merged with the distinct columns for the inner phases.
func (r *SplitAggregateRule) implementFourPhase(
	ctx *OptimizerContext, expr *memo.OptExpression,
	distinctColumns []*operator.ColumnRef, distinctPos int,
	groupingKeys []*operator.ColumnRef,
) []*memo.OptExpression {
	old := expr.Op()
	agg := old.Aggregation
	merged := mergeGroupingKeys(groupingKeys, distinctColumns)

	localOp := r.buildFirstPhase(old, operator.AggLocal, merged, distinctColumns, distinctPos)
	distinctGlobalOp := r.buildFirstPhase(old, operator.AggDistinctGlobal, merged, merged, distinctPos)

	secondPhase := createDistinctAggForSecondPhase(operator.AggDistinctLocal, agg.Aggregations)
	distinctLocalOp := r.buildMidPhase(old, operator.AggDistinctLocal, secondPhase, merged, merged, distinctPos)

	finalMappings := createNormalAgg(operator.AggGlobal, reRewriteAggregate(agg.Aggregations, secondPhase))
	globalOp := r.buildFinalPhase(old, finalMappings, groupingKeys, distinctPos)

	result := memo.NewOptExpression(globalOp,
		memo.NewOptExpression(distinctLocalOp,
			memo.NewOptExpression(distinctGlobalOp,
				memo.NewOptExpression(localOp, expr.Input(0)))))
	return []*memo.OptExpression{result}
}

// implementFourPhaseConstantGroupBy handles grouping keys that are all
// constant under the child's projection. The inner phases partition by
// the distinct columns alone; the constant key values cannot be
// recomputed from partitioned data, so a projection threads them
// through DISTINCT_GLOBAL unchanged.
func (r *SplitAggregateRule) implementFourPhaseConstantGroupBy(
	ctx *OptimizerContext, expr *memo.OptExpression,
	distinctColumns []*operator.ColumnRef, distinctPos int,
) []*memo.OptExpression {
	old := expr.Op()
	agg := old.Aggregation
	childProjection := expr.Input(0).Op().Projection
	merged := mergeGroupingKeys(agg.GroupingKeys, distinctColumns)

	localOp := r.buildFirstPhase(old, operator.AggLocal, distinctColumns, distinctColumns, distinctPos)
	distinctGlobalOp := r.buildFirstPhase(old, operator.AggDistinctGlobal, distinctColumns, distinctColumns, distinctPos)
	distinctGlobalOp.Projection = constantThreadingProjection(distinctGlobalOp.Aggregation, agg.GroupingKeys, childProjection)

	secondPhase := createDistinctAggForSecondPhase(operator.AggDistinctLocal, agg.Aggregations)
	distinctLocalOp := r.buildMidPhase(old, operator.AggDistinctLocal, secondPhase, merged, distinctColumns, distinctPos)

	finalMappings := createNormalAgg(operator.AggGlobal, reRewriteAggregate(agg.Aggregations, secondPhase))
	globalOp := r.buildFinalPhase(old, finalMappings, agg.GroupingKeys, distinctPos)

	result := memo.NewOptExpression(globalOp,
		memo.NewOptExpression(distinctLocalOp,
			memo.NewOptExpression(distinctGlobalOp,
				memo.NewOptExpression(localOp, expr.Input(0)))))
	return []*memo.OptExpression{result}
}

// constantThreadingProjection maps every column the phase produces to
// itself and each constant grouping key to its defining expression.
func constantThreadingProjection(
	phase *operator.AggregationOperator,
	constantKeys []*operator.ColumnRef,
	childProjection *operator.Projection,
) *operator.Projection {
	mapping := childProjection.ColumnRefMap()
	var items []operator.ProjectionItem
	for _, key := range phase.GroupingKeys {
		items = append(items, operator.ProjectionItem{Ref: key, Expr: key})
	}
	for _, m := range phase.Aggregations {
		items = append(items, operator.ProjectionItem{Ref: m.Ref, Expr: m.Ref})
	}
	for _, key := range constantKeys {
		expr, ok := mapping[key.ID]
		if !ok {
			panic(errors.Newf(errno.InternalError,
				"constant grouping key %d has no defining expression", key.ID))
		}
		items = append(items, operator.ProjectionItem{Ref: key, Expr: expr})
	}
	return operator.NewProjection(items)
}

// buildFirstPhase builds a LOCAL or DISTINCT_GLOBAL node: distinct
// calls are dropped from the map (their argument columns live on as
// grouping keys), everything else aggregates to intermediate form.
func (r *SplitAggregateRule) buildFirstPhase(
	old *operator.Operator, aggType operator.AggType,
	groupingKeys, partitionBy []*operator.ColumnRef, distinctPos int,
) *operator.Operator {
	mappings := createDistinctAggForFirstPhase(aggType, old.Aggregation.Aggregations)
	return r.buildMidPhase(old, aggType, mappings, groupingKeys, partitionBy, distinctPos)
}

func (r *SplitAggregateRule) buildMidPhase(
	old *operator.Operator, aggType operator.AggType,
	mappings []operator.AggMapping,
	groupingKeys, partitionBy []*operator.ColumnRef, distinctPos int,
) *operator.Operator {
	return operator.AggregationPatch{
		AggType:                   &aggType,
		MarkSplit:                 true,
		GroupingKeys:              &groupingKeys,
		PartitionByColumns:        &partitionBy,
		Aggregations:              &mappings,
		SingleDistinctFunctionPos: &distinctPos,
		DropPredicate:             true,
		DropLimit:                 true,
		DropProjection:            true,
	}.Apply(old)
}

// buildFinalPhase keeps the original node's limit, predicate and
// projection: they apply to the finished aggregate, never to a partial
// phase.
func (r *SplitAggregateRule) buildFinalPhase(
	old *operator.Operator,
	mappings []operator.AggMapping,
	groupingKeys []*operator.ColumnRef, distinctPos int,
) *operator.Operator {
	globalType := operator.AggGlobal
	keys := groupingKeys
	if keys == nil {
		keys = []*operator.ColumnRef{}
	}
	return operator.AggregationPatch{
		AggType:                   &globalType,
		MarkSplit:                 true,
		GroupingKeys:              &keys,
		PartitionByColumns:        &keys,
		Aggregations:              &mappings,
		SingleDistinctFunctionPos: &distinctPos,
	}.Apply(old)
}

// mergeGroupingKeys appends the distinct columns not already present,
// preserving the original key order.
func mergeGroupingKeys(groupingKeys, distinctColumns []*operator.ColumnRef) []*operator.ColumnRef {
	merged := make([]*operator.ColumnRef, 0, len(groupingKeys)+len(distinctColumns))
	seen := make(map[int]bool)
	for _, key := range groupingKeys {
		merged = append(merged, key)
		seen[key.ID] = true
	}
	for _, col := range distinctColumns {
		if !seen[col.ID] {
			merged = append(merged, col)
			seen[col.ID] = true
		}
	}
	return merged
}

// getIntermediateType reads the partial-state type off a resolved call.
// Missing metadata means the analyzer handed over an unresolved call,
// which the planner cannot recover from.
func getIntermediateType(call *operator.Call) types.Type {
	if call.Fn == nil {
		panic(errors.Newf(errno.InternalError,
			"aggregate call '%s' has no resolved function metadata", call.FnName))
	}
	return call.Fn.GetIntermediateType()
}

// appendConstantColumns propagates constant extra arguments into a
// phase's call, so partial and merge aggregators both receive them.
func appendConstantColumns(args []operator.ScalarOperator, call *operator.Call) []operator.ScalarOperator {
	if len(call.Children) > 1 {
		for _, child := range call.Children {
			if child.IsConstant() {
				args = append(args, child)
			}
		}
	}
	return args
}

// intermediateStateArgs builds the merge-side argument list: the
// call's output slot re-typed to the intermediate state, plus any
// constant extras.
func intermediateStateArgs(ref *operator.ColumnRef, call *operator.Call) []operator.ScalarOperator {
	intermediate := getIntermediateType(call)
	args := []operator.ScalarOperator{
		operator.NewColumnRef(ref.ID, intermediate, ref.Name, ref.Nullable),
	}
	return appendConstantColumns(args, call)
}

// createNormalAgg rewrites a call map for a plain LOCAL or GLOBAL
// phase. LOCAL keeps the original arguments and produces intermediate
// state; GLOBAL consumes the intermediate slot and produces the
// declared return type.
func createNormalAgg(aggType operator.AggType, mappings []operator.AggMapping) []operator.AggMapping {
	out := make([]operator.AggMapping, 0, len(mappings))
	for _, m := range mappings {
		intermediate := getIntermediateType(m.Call)
		var call *operator.Call
		var ref *operator.ColumnRef
		if aggType.IsLocal() {
			call = operator.NewCall(m.Call.FnName, intermediate, m.Call.Children, m.Call.Fn)
			ref = operator.NewColumnRef(m.Ref.ID, intermediate, m.Ref.Name, m.Ref.Nullable)
		} else {
			call = operator.NewCall(m.Call.FnName, m.Call.RetType, intermediateStateArgs(m.Ref, m.Call), m.Call.Fn)
			ref = m.Ref
		}
		out = append(out, operator.AggMapping{Ref: ref, Call: call})
	}
	return out
}

// createDistinctAggForFirstPhase drops distinct calls (their argument
// columns become grouping keys) and turns the rest into intermediate
// producers (LOCAL) or intermediate mergers (DISTINCT_GLOBAL).
func createDistinctAggForFirstPhase(aggType operator.AggType, mappings []operator.AggMapping) []operator.AggMapping {
	out := make([]operator.AggMapping, 0, len(mappings))
	for _, m := range mappings {
		if m.Call.Distinct && !m.Call.IsConstant() {
			continue
		}
		intermediate := getIntermediateType(m.Call)
		var call *operator.Call
		if aggType.IsDistinctGlobal() {
			call = operator.NewCall(m.Call.FnName, intermediate, intermediateStateArgs(m.Ref, m.Call), m.Call.Fn)
		} else {
			call = operator.NewCall(m.Call.FnName, intermediate, m.Call.Children, m.Call.Fn)
		}
		ref := operator.NewColumnRef(m.Ref.ID, intermediate, m.Ref.Name, m.Ref.Nullable)
		out = append(out, operator.AggMapping{Ref: ref, Call: call})
	}
	return out
}

// createDistinctAggForSecondPhase re-derives the distinct call into an
// evaluable non-distinct form (the inner phases already collapsed
// duplicates) and merges the other calls' intermediate state. For the
// DISTINCT_LOCAL tier the non-distinct calls stay in intermediate form;
// the final GLOBAL tier produces declared return types.
func createDistinctAggForSecondPhase(aggType operator.AggType, mappings []operator.AggMapping) []operator.AggMapping {
	out := make([]operator.AggMapping, 0, len(mappings))
	for _, m := range mappings {
		if m.Call.Distinct && !m.Call.IsConstant() {
			out = append(out, operator.AggMapping{Ref: m.Ref, Call: finalizeDistinctCall(m.Call)})
			continue
		}
		intermediate := getIntermediateType(m.Call)
		args := intermediateStateArgs(m.Ref, m.Call)
		var call *operator.Call
		var ref *operator.ColumnRef
		if aggType.IsDistinctLocal() {
			call = operator.NewCall(m.Call.FnName, intermediate, args, m.Call.Fn)
			ref = operator.NewColumnRef(m.Ref.ID, intermediate, m.Ref.Name, m.Ref.Nullable)
		} else {
			call = operator.NewCall(m.Call.FnName, m.Call.RetType, args, m.Call.Fn)
			ref = m.Ref
		}
		out = append(out, operator.AggMapping{Ref: ref, Call: call})
	}
	return out
}

// finalizeDistinctCall removes the distinct modifier after phase
// separation has made duplicates impossible. A multi-column count gets
// the null-safe nested-IF argument before the signature is re-resolved,
// preserving NULL-exclusion semantics under duplicate collapsing.
func finalizeDistinctCall(call *operator.Call) *operator.Call {
	var arg operator.ScalarOperator
	if call.FnName == function.Count && len(call.Children) > 1 {
		arg = createCountDistinctAggParam(call.Children)
	} else {
		arg = call.Children[0]
	}
	fn, err := function.GetBuiltinFunction(call.FnName, []types.Type{arg.ScalarType()})
	if err != nil {
		panic(errors.Newf(errno.InternalError,
			"cannot re-resolve distinct aggregate '%s': %v", call.FnName, err))
	}
	return operator.NewCall(call.FnName, fn.ReturnType, []operator.ScalarOperator{arg}, fn)
}

// createCountDistinctAggParam right-folds the argument columns into
// nested conditionals: NULL if any column is NULL, else the last
// column. count over the result then excludes exactly the rows a
// multi-column distinct count must exclude.
func createCountDistinctAggParam(args []operator.ScalarOperator) operator.ScalarOperator {
	inner := args[len(args)-1]
	for i := len(args) - 2; i >= 0; i-- {
		isNullFn, err := function.GetBuiltinFunction(function.IsNull, []types.Type{args[i].ScalarType()})
		if err != nil {
			panic(errors.Newf(errno.InternalError, "cannot resolve isnull: %v", err))
		}
		condition := operator.NewCall(function.IsNull, isNullFn.ReturnType,
			[]operator.ScalarOperator{args[i]}, isNullFn)

		innerType := inner.ScalarType()
		ifArgs := []operator.ScalarOperator{
			condition,
			operator.NewNullConstant(innerType),
			inner,
		}
		ifFn, err := function.GetBuiltinFunction(function.If,
			[]types.Type{condition.ScalarType(), innerType, innerType})
		if err != nil {
			panic(errors.Newf(errno.InternalError, "cannot resolve if: %v", err))
		}
		inner = operator.NewCall(function.If, ifFn.ReturnType, ifArgs, ifFn)
	}
	return inner
}

// rewriteDistinctAggFn maps a single-column distinct call onto its
// duplicate-insensitive counterpart. Only count and sum have one; any
// other distinct call reaching here escaped an upstream rewrite.
func rewriteDistinctAggFn(call *operator.Call) *operator.Call {
	var name string
	switch call.FnName {
	case function.Count:
		name = function.MultiDistinctCount
	case function.Sum:
		name = function.MultiDistinctSum
	default:
		panic(errors.Newf(errno.InternalError,
			"distinct aggregate '%s' has no multi-distinct counterpart", call.FnName))
	}
	argTypes := make([]types.Type, len(call.Children))
	for i, child := range call.Children {
		argTypes[i] = child.ScalarType()
	}
	fn, err := function.GetBuiltinFunction(name, argTypes)
	if err != nil {
		panic(errors.Newf(errno.InternalError,
			"cannot resolve '%s': %v", name, err))
	}
	return operator.NewCall(name, fn.ReturnType, call.Children, fn)
}

// reRewriteAggregate swaps the distinct entries for the evaluable
// calls the DISTINCT_LOCAL tier produced, keeping everything else, so
// the final GLOBAL merge is built from a distinct-free map.
func reRewriteAggregate(original, secondPhase []operator.AggMapping) []operator.AggMapping {
	out := make([]operator.AggMapping, len(original))
	for i, m := range original {
		if m.Call.Distinct && !m.Call.IsConstant() {
			out[i] = secondPhase[i]
		} else {
			out[i] = m
		}
	}
	return out
}
