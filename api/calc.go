package api

import (
	"net/http"

	"github.com/warp/angka-kredit/credit"
	"github.com/warp/angka-kredit/reports"
)

// =============================================================================
// CALCULATION HANDLERS - Stateless, nothing is stored
// =============================================================================

// CalcCredit returns the credit breakdown of a hypothetical assessment.
// POST /api/calc/credit
func (h *Handler) CalcCredit(w http.ResponseWriter, r *http.Request) {
	var req CreditRequest
	if !h.decode(w, r, &req) {
		return
	}

	calc := h.Service.Calculator()
	if req.Policy != "" {
		calc = calc.WithPolicy(credit.PolicyByName(req.Policy))
	}
	b := calc.Derive(req.Predicate, req.JobLevel, req.PeriodStart, req.PeriodEnd)
	writeJSON(w, http.StatusOK, creditResponse(calc.Policy(), b))
}

// CalcTarget resolves the promotion target for a golongan and total.
// POST /api/calc/target
func (h *Handler) CalcTarget(w http.ResponseWriter, r *http.Request) {
	var req TargetRequest
	if !h.decode(w, r, &req) {
		return
	}
	res := h.Service.Tables().ResolveTarget(req.Grade, req.Total)
	writeJSON(w, http.StatusOK, reports.NewTarget(res))
}

// CalcEducation returns the education credit for a golongan, falling back
// to the education level when the golongan is unknown.
// POST /api/calc/education
func (h *Handler) CalcEducation(w http.ResponseWriter, r *http.Request) {
	var req EducationCalcRequest
	if !h.decode(w, r, &req) {
		return
	}
	res := h.Service.Tables().EducationCredit(req.Grade, req.Level)
	writeJSON(w, http.StatusOK, EducationCalcResponse{
		Method:  res.Method,
		Basis:   res.Basis,
		Value:   res.Value,
		Rounded: credit.QuarterCeil(res.Value),
	})
}

// CalcMonths counts the months of a period. Missing or unparseable dates
// count as zero months.
// GET /api/calc/months?start=2024-01-01&end=2024-12-31&policy=inclusive
func (h *Handler) CalcMonths(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end := q.Get("start"), q.Get("end")
	policy := credit.ParseMonthPolicy(q.Get("policy"))
	writeJSON(w, http.StatusOK, MonthsResponse{
		Start:  start,
		End:    end,
		Policy: policy.String(),
		Months: credit.MonthsBetween(policy, start, end),
	})
}
