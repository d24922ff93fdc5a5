package preprocessing

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/linfit/core/model"
	"github.com/YuminosukeSato/linfit/pkg/errors"
)

// Method は x と y をまとめて正規化する方式
type Method int

const (
	// MaxAbs は max(|x|, |y|) で割る方式。符号と比例関係を保ち、切片を元の単位に戻せる
	MaxAbs Method = iota
	// MinMaxAffine は結合した最小値・最大値で [-1, 1] に写す方式
	MinMaxAffine
)

// String は設定ファイルやログで使う名前を返す
func (m Method) String() string {
	switch m {
	case MaxAbs:
		return "maxabs"
	case MinMaxAffine:
		return "affine"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod は "maxabs" / "affine" を Method に変換する
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "maxabs", "max-abs", "":
		return MaxAbs, nil
	case "affine", "minmax", "min-max":
		return MinMaxAffine, nil
	default:
		return MaxAbs, errors.NewValidationError("normalization", "must be one of maxabs, affine", s)
	}
}

// NormalizeCombinedAffine は x と y を結合した最小値・最大値で [-1, 1] に写す
//
//	v' = -1 + 2*(v - min) / (max - min)
//
// 全ての値が同一の場合は DegenerateRangeError を返す。
func NormalizeCombinedAffine(x, y []float64) ([]float64, []float64, error) {
	const op = "NormalizeCombinedAffine"
	if err := validatePair(op, x, y); err != nil {
		return nil, nil, err
	}

	lo, hi := combinedExtrema(x, y)
	if hi == lo {
		return nil, nil, errors.NewDegenerateRangeError(op, lo, hi)
	}

	return affine(x, lo, hi), affine(y, lo, hi), nil
}

// NormalizeCombinedMaxAbs は x と y を共通のスケールで割る
//
//	scale = max(max|x_i|, max|y_i|),  v' = v / scale
//
// 全ての値が0の場合は DegenerateRangeError を返す。
func NormalizeCombinedMaxAbs(x, y []float64) ([]float64, []float64, float64, error) {
	const op = "NormalizeCombinedMaxAbs"
	if err := validatePair(op, x, y); err != nil {
		return nil, nil, 0, err
	}

	scale := math.Max(maxAbs(x), maxAbs(y))
	if scale == 0 {
		return nil, nil, 0, errors.NewDegenerateRangeError(op, 0, 0)
	}

	return divide(x, scale), divide(y, scale), scale, nil
}

// DenormalizeIntercept は正規化空間の切片を元の単位に戻す。
// 傾きは x と y が同じ scale を共有している限り変換不要。
func DenormalizeIntercept(b, scale float64) float64 {
	return b * scale
}

// CombinedScaler は結合正規化の統計量を保持し、逆変換を提供する
type CombinedScaler struct {
	state *model.StateManager

	// Method は正規化方式
	Method Method

	// Min, Max は MinMaxAffine で使う結合最小値・最大値
	Min float64
	Max float64

	// Scale は MaxAbs で使う共通スケール
	Scale float64
}

// NewCombinedScaler は新しいCombinedScalerを作成する
//
// 使用例:
//
//	scaler := preprocessing.NewCombinedScaler(preprocessing.MaxAbs)
//	xn, yn, err := scaler.FitTransform(x, y)
//	// ... 正規化空間で学習 ...
//	a, b, err := scaler.Denormalize(aNorm, bNorm)
func NewCombinedScaler(method Method) *CombinedScaler {
	return &CombinedScaler{
		state:  model.NewStateManager(),
		Method: method,
	}
}

// Fit は x と y から結合統計量を計算する
func (s *CombinedScaler) Fit(x, y []float64) error {
	switch s.Method {
	case MaxAbs:
		_, _, scale, err := NormalizeCombinedMaxAbs(x, y)
		if err != nil {
			return err
		}
		s.Scale = scale
	case MinMaxAffine:
		if _, _, err := NormalizeCombinedAffine(x, y); err != nil {
			return err
		}
		s.Min, s.Max = combinedExtrema(x, y)
	default:
		return errors.NewValueError("CombinedScaler.Fit", fmt.Sprintf("unknown method %v", s.Method))
	}

	s.state.SetFitted(len(x))
	return nil
}

// Transform は学習済みの統計量で x と y を正規化する
func (s *CombinedScaler) Transform(x, y []float64) ([]float64, []float64, error) {
	if err := s.state.RequireFitted("CombinedScaler", "Transform"); err != nil {
		return nil, nil, err
	}
	if err := validatePair("CombinedScaler.Transform", x, y); err != nil {
		return nil, nil, err
	}

	if s.Method == MinMaxAffine {
		return affine(x, s.Min, s.Max), affine(y, s.Min, s.Max), nil
	}
	return divide(x, s.Scale), divide(y, s.Scale), nil
}

// FitTransform は Fit と Transform を続けて実行する
func (s *CombinedScaler) FitTransform(x, y []float64) ([]float64, []float64, error) {
	if err := s.Fit(x, y); err != nil {
		return nil, nil, err
	}
	return s.Transform(x, y)
}

// InverseTransform は正規化された値の列を元の単位に戻す
func (s *CombinedScaler) InverseTransform(v []float64) ([]float64, error) {
	if err := s.state.RequireFitted("CombinedScaler", "InverseTransform"); err != nil {
		return nil, err
	}

	out := make([]float64, len(v))
	for i, vi := range v {
		if s.Method == MinMaxAffine {
			out[i] = s.Min + (vi+1)*(s.Max-s.Min)/2
		} else {
			out[i] = vi * s.Scale
		}
	}
	return out, nil
}

// Denormalize は正規化空間で求めた直線 y' = a'x' + b' を元の単位の (a, b) に戻す
//
// MaxAbs:       a = a',  b = b' * scale
// MinMaxAffine: a = a',  b = (R/2)(b' + 1 - a') + min(1 - a'),  R = max - min
func (s *CombinedScaler) Denormalize(a, b float64) (float64, float64, error) {
	if err := s.state.RequireFitted("CombinedScaler", "Denormalize"); err != nil {
		return 0, 0, err
	}

	if s.Method == MinMaxAffine {
		r := s.Max - s.Min
		return a, r/2*(b+1-a) + s.Min*(1-a), nil
	}
	return a, DenormalizeIntercept(b, s.Scale), nil
}

// IsFitted は Fit 済みかどうかを返す
func (s *CombinedScaler) IsFitted() bool {
	return s.state.IsFitted()
}

// GetParams はスケーラーのパラメータを取得する
func (s *CombinedScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"method": s.Method.String(),
	}
}

// String はスケーラーの文字列表現を返す
func (s *CombinedScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("CombinedScaler(method=%s)", s.Method)
	}
	if s.Method == MinMaxAffine {
		return fmt.Sprintf("CombinedScaler(method=%s, min=%g, max=%g)", s.Method, s.Min, s.Max)
	}
	return fmt.Sprintf("CombinedScaler(method=%s, scale=%g)", s.Method, s.Scale)
}

func validatePair(op string, x, y []float64) error {
	if len(x) == 0 || len(y) == 0 {
		return errors.NewEmptyDatasetError(op)
	}
	if len(x) != len(y) {
		return errors.NewDimensionError(op, len(x), len(y))
	}
	return nil
}

// combinedExtrema は x と y を連結した列の最小値・最大値を返す
func combinedExtrema(x, y []float64) (lo, hi float64) {
	return math.Min(floats.Min(x), floats.Min(y)), math.Max(floats.Max(x), floats.Max(y))
}

func maxAbs(v []float64) float64 {
	return math.Max(math.Abs(floats.Min(v)), math.Abs(floats.Max(v)))
}

func affine(v []float64, lo, hi float64) []float64 {
	out := make([]float64, len(v))
	for i, vi := range v {
		out[i] = -1 + 2*(vi-lo)/(hi-lo)
	}
	return out
}

func divide(v []float64, scale float64) []float64 {
	out := make([]float64, len(v))
	for i, vi := range v {
		out[i] = vi / scale
	}
	return out
}
