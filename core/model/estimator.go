package model

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit は x と y の組でモデルを学習させる
	Fit(x, y []float64) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力に対する予測値を返す
	Predict(x []float64) ([]float64, error)
}

// Scorer は決定係数を計算できるモデルのインターフェース
type Scorer interface {
	// Score は R² を返す
	Score(x, y []float64) (float64, error)
}

// ParameterGetter はハイパーパラメータを公開するモデルのインターフェース
type ParameterGetter interface {
	GetParams() map[string]interface{}
}

// Regressor は回帰モデルが満たすインターフェースの組み合わせ
type Regressor interface {
	Fitter
	Predictor
	Scorer
	ParameterGetter
	IsFitted() bool
}
