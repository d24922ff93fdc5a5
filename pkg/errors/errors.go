// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// データ読み込み・正規化・学習の各段階で発生するエラーを閉じた型の集合として表現し、
// cockroachdb/errors によるスタックトレースを付与します。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("linfit-warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler は警告ハンドラを設定します。
// ConvergenceWarning などの処理方法を制御できます。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
// nil を渡すと従来のハンドラに戻ります。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ConvergenceWarning は最適化が反復上限までに停止条件を満たさなかった場合の警告です。
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	if w.Message != "" {
		return fmt.Sprintf("%s failed to converge after %d iterations: %s", w.Algorithm, w.Iterations, w.Message)
	}
	return fmt.Sprintf("%s failed to converge after %d iterations. Consider raising the iteration bound or the threshold.", w.Algorithm, w.Iterations)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Str("message", w.Message).
		Str("type", "ConvergenceWarning")
}

// NewConvergenceWarning は新しいConvergenceWarningを作成します。
func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// ===========================================================================
//
//	データセット・正規化エラー（閉じた集合）
//
// ===========================================================================

// Kind はデータ系エラーの種類です。値の集合は固定です。
type Kind int

const (
	// KindUnknown はデータ系エラーではないことを示します。
	KindUnknown Kind = iota
	// KindInvalidColumnCount はレコードのフィールド数が2でないことを示します。
	KindInvalidColumnCount
	// KindNonNumericValue はフィールドが有限の実数として解釈できないことを示します。
	KindNonNumericValue
	// KindDegenerateRange は正規化のスケールが0、または範囲が空であることを示します。
	KindDegenerateRange
	// KindEmptyDataset は利用可能な行が1つもないことを示します。
	KindEmptyDataset
)

func (k Kind) String() string {
	switch k {
	case KindInvalidColumnCount:
		return "InvalidColumnCount"
	case KindNonNumericValue:
		return "NonNumericValue"
	case KindDegenerateRange:
		return "DegenerateRange"
	case KindEmptyDataset:
		return "EmptyDataset"
	default:
		return "Unknown"
	}
}

var (
	// ErrInvalidColumnCount は errors.Is 用の番兵です。
	ErrInvalidColumnCount = New("invalid column count")
	// ErrNonNumericValue は errors.Is 用の番兵です。
	ErrNonNumericValue = New("non-numeric value")
	// ErrDegenerateRange は errors.Is 用の番兵です。
	ErrDegenerateRange = New("degenerate range")
	// ErrEmptyDataset は errors.Is 用の番兵です。
	ErrEmptyDataset = New("empty dataset")
)

// InvalidColumnCountError はレコードが正確に2つのフィールドを持たない場合のエラーです。
type InvalidColumnCountError struct {
	Line int // 1始まりの行番号（ヘッダを含む）
	Got  int
}

func (e *InvalidColumnCountError) Error() string {
	return fmt.Sprintf("linfit: line %d: each record must have exactly two columns, got %d", e.Line, e.Got)
}

// Is は ErrInvalidColumnCount との比較を可能にします。
func (e *InvalidColumnCountError) Is(target error) bool { return target == ErrInvalidColumnCount }

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *InvalidColumnCountError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("line", e.Line).
		Int("got", e.Got).
		Str("type", KindInvalidColumnCount.String())
}

// NewInvalidColumnCountError は新しいInvalidColumnCountErrorを作成し、スタックトレースを付与します。
func NewInvalidColumnCountError(line, got int) error {
	return errors.WithStack(&InvalidColumnCountError{Line: line, Got: got})
}

// NonNumericValueError はフィールドが有限の実数として解釈できない場合のエラーです。
// NaN や Inf も非数値として扱います。
type NonNumericValueError struct {
	Line   int
	Column int // 0始まり
	Value  string
}

func (e *NonNumericValueError) Error() string {
	return fmt.Sprintf("linfit: line %d, column %d: each field must contain a finite numeric value (got %q)", e.Line, e.Column+1, e.Value)
}

// Is は ErrNonNumericValue との比較を可能にします。
func (e *NonNumericValueError) Is(target error) bool { return target == ErrNonNumericValue }

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NonNumericValueError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("line", e.Line).
		Int("column", e.Column).
		Str("value", e.Value).
		Str("type", KindNonNumericValue.String())
}

// NewNonNumericValueError は新しいNonNumericValueErrorを作成し、スタックトレースを付与します。
func NewNonNumericValueError(line, column int, value string) error {
	return errors.WithStack(&NonNumericValueError{Line: line, Column: column, Value: value})
}

// DegenerateRangeError は正規化のスケールが0になる場合のエラーです。
// 全ての値が同一、または全ての値が0のときに発生します。
type DegenerateRangeError struct {
	Op  string
	Min float64
	Max float64
}

func (e *DegenerateRangeError) Error() string {
	return fmt.Sprintf("linfit: %s: degenerate range [%g, %g], cannot normalize", e.Op, e.Min, e.Max)
}

// Is は ErrDegenerateRange との比較を可能にします。
func (e *DegenerateRangeError) Is(target error) bool { return target == ErrDegenerateRange }

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DegenerateRangeError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Float64("min", e.Min).
		Float64("max", e.Max).
		Str("type", KindDegenerateRange.String())
}

// NewDegenerateRangeError は新しいDegenerateRangeErrorを作成し、スタックトレースを付与します。
func NewDegenerateRangeError(op string, min, max float64) error {
	return errors.WithStack(&DegenerateRangeError{Op: op, Min: min, Max: max})
}

// EmptyDatasetError は利用可能なサンプルが存在しない場合のエラーです。
type EmptyDatasetError struct {
	Op string
}

func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("linfit: %s: dataset has no usable rows", e.Op)
}

// Is は ErrEmptyDataset との比較を可能にします。
func (e *EmptyDatasetError) Is(target error) bool { return target == ErrEmptyDataset }

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *EmptyDatasetError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("type", KindEmptyDataset.String())
}

// NewEmptyDatasetError は新しいEmptyDatasetErrorを作成し、スタックトレースを付与します。
func NewEmptyDatasetError(op string) error {
	return errors.WithStack(&EmptyDatasetError{Op: op})
}

// KindOf はエラーチェーンからデータ系エラーの種類を取り出します。
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrInvalidColumnCount):
		return KindInvalidColumnCount
	case errors.Is(err, ErrNonNumericValue):
		return KindNonNumericValue
	case errors.Is(err, ErrDegenerateRange):
		return KindDegenerateRange
	case errors.Is(err, ErrEmptyDataset):
		return KindEmptyDataset
	default:
		return KindUnknown
	}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// NotFittedError はモデルが未学習の状態で Predict などを呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("linfit: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// DimensionError は x と y の長さが一致しない場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("linfit: %s: length mismatch. Expected %d, got %d", e.Op, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got})
}

// ValidationError は設定値の検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("linfit: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	return errors.WithStack(&ValidationError{ParamName: param, Reason: reason, Value: value})
}

// ValueError は引数の値が不適切な場合のエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("linfit: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// ModelError は学習処理全般のエラーです。原因のエラーを保持します。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("linfit: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("linfit: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError は新しいModelErrorを作成し、スタックトレースを付与します。
func NewModelError(op, kind string, err error) error {
	return errors.WithStack(&ModelError{Op: op, Kind: kind, Err: err})
}

// NumericalInstabilityError は損失や勾配に NaN / Inf が現れた場合、または学習が発散した場合のエラーです。
type NumericalInstabilityError struct {
	Operation string
	Values    []float64
	Iteration int
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("linfit: numerical instability detected in %s at iteration %d. Values: [%s]",
		e.Operation, e.Iteration, valStr)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NumericalInstabilityError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Operation).
		Int("iteration", e.Iteration).
		Floats64("values", e.Values).
		Str("type", "NumericalInstabilityError")
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	return errors.WithStack(&NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Iteration: iteration,
	})
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}
