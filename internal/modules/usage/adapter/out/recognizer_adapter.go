package out

import (
	"context"

	recognizerdto "detox/internal/modules/recognizer/dto"
	recognizerin "detox/internal/modules/recognizer/port/in"
	usageout "detox/internal/modules/usage/port/out"
)

type RecognizerAdapter struct {
	recognizers recognizerin.Usecase
}

func NewRecognizerAdapter(recognizers recognizerin.Usecase) usageout.Recognizer {
	return &RecognizerAdapter{recognizers: recognizers}
}

func (a *RecognizerAdapter) Recognize(ctx context.Context, recognizer, imagePath string) (usageout.RecognizedText, error) {
	out, err := a.recognizers.Recognize(ctx, recognizerdto.RecognizeInput{Recognizer: recognizer, ImagePath: imagePath})
	if err != nil {
		return usageout.RecognizedText{}, err
	}
	return usageout.RecognizedText{Recognizer: out.Recognizer, Tokens: out.Tokens}, nil
}
