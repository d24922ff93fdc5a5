package linear

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/linfit/core/model"
	"github.com/YuminosukeSato/linfit/metrics"
	"github.com/YuminosukeSato/linfit/optimize"
	"github.com/YuminosukeSato/linfit/pkg/errors"
	"github.com/YuminosukeSato/linfit/pkg/log"
	"github.com/YuminosukeSato/linfit/preprocessing"
)

// DefaultEpochs は WithPolicy を指定しない場合のエポック数
const DefaultEpochs = 10_000

var _ model.Regressor = (*Regression)(nil)

// Regression は y = a*x + b を勾配降下法で当てはめる1変数線形回帰モデル
//
// 学習は正規化空間で行い、終了後に傾き・切片を元の単位に戻して公開する。
type Regression struct {
	state *model.StateManager

	// ハイパーパラメータ
	policy        StoppingPolicy
	learningRate  float64
	maxIterations int
	normalization preprocessing.Method
	gradientStep  float64
	logger        log.Logger
	estimatorID   string

	// 学習結果
	scaler     *preprocessing.CombinedScaler
	slope      float64
	intercept  float64
	aNorm      float64
	bNorm      float64
	iterations int
	loss       float64
	converged  bool
}

// NewRegression は新しい線形回帰モデルを作成する
//
// 使用例:
//
//	reg := linear.NewRegression(
//	    linear.WithPolicy(linear.ConvergenceThreshold{DeltaRMS: 1e-12}),
//	)
//	if err := reg.Fit(x, y); err != nil {
//	    return err
//	}
//	fmt.Println(reg.Equation())
func NewRegression(opts ...Option) *Regression {
	r := &Regression{
		state:         model.NewStateManager(),
		policy:        FixedEpochs{N: DefaultEpochs},
		maxIterations: DefaultMaxIterations,
		normalization: preprocessing.MaxAbs,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fit は x と y の組でモデルを学習させる
//
// 入力エラー（空データ、長さ不一致、退化した値域）は学習開始前に返す。
// 学習に成功した場合のみ学習済み状態になる。
func (r *Regression) Fit(x, y []float64) (err error) {
	const op = "Regression.Fit"
	r.reset()

	logger := r.fitLogger()
	defer func() {
		if err != nil {
			logger.Error("Fit failed", err, log.ErrorCodeKey, errorCode(err))
		}
	}()

	lr, err := r.validate()
	if err != nil {
		return err
	}
	if len(x) == 0 || len(y) == 0 {
		return errors.NewEmptyDatasetError(op)
	}
	if len(x) != len(y) {
		return errors.NewDimensionError(op, len(x), len(y))
	}
	if err := errors.CheckNumericalStability(op, x, 0); err != nil {
		return err
	}
	if err := errors.CheckNumericalStability(op, y, 0); err != nil {
		return err
	}

	// 正規化
	scaler := preprocessing.NewCombinedScaler(r.normalization)
	xn, yn, err := scaler.FitTransform(x, y)
	if err != nil {
		return err
	}

	logger.Info("Training started",
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, len(x),
		log.PolicyKey, r.policy.Name(),
		log.LearningRateKey, lr,
		log.NormalizationKey, r.normalization.String(),
	)

	t := &trainer{
		x:             xn,
		y:             yn,
		learningRate:  lr,
		maxIterations: r.maxIterations,
		gradient:      optimize.ForwardDifference{Step: r.gradientStep},
		logger:        logger,
	}
	start := time.Now()
	res, err := t.run(r.policy)
	if err != nil {
		return errors.NewModelError(op, "training aborted", err)
	}

	// 元の単位に戻す
	a, b, err := scaler.Denormalize(res.a, res.b)
	if err != nil {
		return err
	}

	r.scaler = scaler
	r.aNorm, r.bNorm = res.a, res.b
	r.slope, r.intercept = a, b
	r.iterations = res.iterations
	r.loss = res.loss
	r.converged = res.converged
	r.state.SetFitted(len(x))

	r.logSummary(logger, x, y, time.Since(start))
	return nil
}

// Predict は入力に対する予測値 a*x + b を返す
func (r *Regression) Predict(x []float64) ([]float64, error) {
	if err := r.state.RequireFitted("Regression", "Predict"); err != nil {
		return nil, err
	}

	pred := make([]float64, len(x))
	for i, xi := range x {
		pred[i] = r.slope*xi + r.intercept
	}
	return pred, nil
}

// Score は元の単位での決定係数（R²）を計算する
func (r *Regression) Score(x, y []float64) (float64, error) {
	if err := r.state.RequireFitted("Regression", "Score"); err != nil {
		return 0, err
	}
	if len(x) == 0 {
		return 0, errors.NewEmptyDatasetError("Regression.Score")
	}
	if len(x) != len(y) {
		return 0, errors.NewDimensionError("Regression.Score", len(x), len(y))
	}

	pred, err := r.Predict(x)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(mat.NewVecDense(len(y), y), mat.NewVecDense(len(pred), pred))
}

// Slope は元の単位での傾きを返す
func (r *Regression) Slope() float64 { return r.slope }

// Intercept は元の単位での切片を返す
func (r *Regression) Intercept() float64 { return r.intercept }

// NormalizedParams は正規化空間での (a, b) を返す
func (r *Regression) NormalizedParams() (a, b float64) { return r.aNorm, r.bNorm }

// Iterations は実行した更新ステップ数を返す
func (r *Regression) Iterations() int { return r.iterations }

// Loss は正規化空間での最終的な平均二乗誤差を返す
func (r *Regression) Loss() float64 { return r.loss }

// Converged は停止条件で終了したかどうかを返す。
// ConvergenceThreshold が反復上限に達した場合は false。
func (r *Regression) Converged() bool { return r.converged }

// Scaler は学習時に使った正規化器を返す。未学習の場合は nil。
func (r *Regression) Scaler() *preprocessing.CombinedScaler { return r.scaler }

// Equation は学習結果を "y = <a>x, + <b>" の形式で返す
func (r *Regression) Equation() string {
	return fmt.Sprintf("y = %vx, + %v", r.slope, r.intercept)
}

// IsFitted はモデルが学習済みかどうかを返す
func (r *Regression) IsFitted() bool {
	return r.state.IsFitted()
}

// GetParams はモデルのハイパーパラメータを取得する
func (r *Regression) GetParams() map[string]interface{} {
	params := map[string]interface{}{
		"policy":         "",
		"learning_rate":  r.learningRate,
		"max_iterations": r.maxIterations,
		"normalization":  r.normalization.String(),
		"gradient_step":  r.gradientStep,
	}
	switch p := r.policy.(type) {
	case FixedEpochs:
		params["policy"] = p.Name()
		params["epochs"] = p.N
	case ConvergenceThreshold:
		params["policy"] = p.Name()
		params["threshold"] = p.DeltaRMS
	}
	if r.learningRate == 0 && r.policy != nil {
		params["learning_rate"] = r.policy.defaultLearningRate()
	}
	if r.gradientStep == 0 {
		params["gradient_step"] = optimize.DefaultStep
	}
	return params
}

// reset は学習結果を破棄する。失敗した再学習で前回のモデルが見えないようにする。
func (r *Regression) reset() {
	r.state.Reset()
	r.scaler = nil
	r.slope, r.intercept = 0, 0
	r.aNorm, r.bNorm = 0, 0
	r.iterations = 0
	r.loss = 0
	r.converged = false
}

// validate はハイパーパラメータを検証し、実際に使う学習率を返す
func (r *Regression) validate() (float64, error) {
	if r.policy == nil {
		return 0, errors.NewValidationError("policy", "must not be nil", nil)
	}
	if err := r.policy.validate(); err != nil {
		return 0, err
	}

	lr := r.learningRate
	if lr == 0 {
		lr = r.policy.defaultLearningRate()
	}
	if !(lr > 0) || !errors.IsFinite(lr) {
		return 0, errors.NewValidationError("learning_rate", "must be a positive finite number", lr)
	}
	if r.maxIterations < 0 {
		return 0, errors.NewValidationError("max_iterations", "must be non-negative (0 disables the bound)", r.maxIterations)
	}
	if r.gradientStep != 0 {
		if _, err := optimize.NewForwardDifference(r.gradientStep); err != nil {
			return 0, err
		}
	}
	return lr, nil
}

func (r *Regression) fitLogger() log.Logger {
	logger := r.logger
	if logger == nil {
		logger = log.GetLogger()
	}
	fields := []any{
		log.ModelNameKey, "Regression",
		log.OperationKey, log.OperationFit,
	}
	if r.estimatorID != "" {
		fields = append(fields, log.EstimatorIDKey, r.estimatorID)
	}
	return logger.With(fields...)
}

// logSummary は元の単位での評価指標と共に学習結果を記録する
func (r *Regression) logSummary(logger log.Logger, x, y []float64, elapsed time.Duration) {
	fields := []any{
		log.IterationKey, r.iterations,
		log.LossKey, r.loss,
		log.SlopeKey, r.slope,
		log.InterceptKey, r.intercept,
		log.DurationMsKey, elapsed.Milliseconds(),
	}

	pred, _ := r.Predict(x)
	yVec := mat.NewVecDense(len(y), y)
	predVec := mat.NewVecDense(len(pred), pred)
	if rmse, err := metrics.RMSE(yVec, predVec); err == nil {
		fields = append(fields, log.RMSEKey, rmse)
	}
	if mae, err := metrics.MAE(yVec, predVec); err == nil {
		fields = append(fields, log.MAEKey, mae)
	}
	// y が定数の場合 R² は定義されないので省略する
	if r2, err := metrics.R2Score(yVec, predVec); err == nil {
		fields = append(fields, log.R2ScoreKey, r2)
	}

	logger.Info("Training finished", fields...)
}

func errorCode(err error) string {
	switch errors.KindOf(err) {
	case errors.KindEmptyDataset:
		return log.ErrorEmptyData
	case errors.KindDegenerateRange:
		return log.ErrorDegenerate
	}
	var numErr *errors.NumericalInstabilityError
	if errors.As(err, &numErr) {
		return log.ErrorNumerical
	}
	return log.ErrorInvalidInput
}
