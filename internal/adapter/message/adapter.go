package message

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/responses"
	"go.uber.org/zap"
)

// Question: один запрос ассистенту.
type Question struct {
	System  string // системный промпт
	History string // блок с предыдущими ответами, может быть пустым
	Text    string // распознанный вопрос пользователя
	JPEG    []byte // скриншот, может быть nil
}

type Adapter struct {
	client *openai.Client
	model  openai.ChatModel
	logger *zap.SugaredLogger
}

// New создаёт адаптер Responses API.
func New(client *openai.Client, model string, logger *zap.SugaredLogger) *Adapter {
	if strings.TrimSpace(model) == "" {
		model = openai.ChatModelGPT4oMini
	}
	return &Adapter{client: client, model: openai.ChatModel(model), logger: logger}
}

// Params собирает stateless запрос: системное сообщение и одно пользовательское
// с историей, текстом и картинкой.
func (a *Adapter) Params(q Question) responses.ResponseNewParams {
	content := make(responses.ResponseInputMessageContentListParam, 0, 3)
	if h := strings.TrimSpace(q.History); h != "" {
		content = append(content, responses.ResponseInputContentParamOfInputText(h))
	}
	content = append(content, responses.ResponseInputContentParamOfInputText(q.Text))
	if len(q.JPEG) > 0 {
		img := responses.ResponseInputContentParamOfInputImage(responses.ResponseInputImageDetailAuto)
		img.OfInputImage.ImageURL = openai.String(dataURL("image/jpeg", q.JPEG))
		content = append(content, img)
	}

	items := make(responses.ResponseInputParam, 0, 2)
	if st := strings.TrimSpace(q.System); st != "" {
		items = append(items, responses.ResponseInputItemParamOfMessage(
			responses.ResponseInputMessageContentListParam{
				{OfInputText: &responses.ResponseInputTextParam{Text: st}},
			},
			responses.EasyInputMessageRoleSystem,
		))
	}
	items = append(items, responses.ResponseInputItemParamOfMessage(content, responses.EasyInputMessageRoleUser))

	return responses.ResponseNewParams{
		Model: a.model,
		Input: responses.ResponseNewParamsInputUnion{OfInputItemList: items},
	}
}

// Ask отправляет вопрос и возвращает текст ответа.
func (a *Adapter) Ask(ctx context.Context, q Question) (string, error) {
	start := time.Now()
	a.logger.Infow("Запрос в OpenAI...", "model", a.model, "image", len(q.JPEG) > 0)
	resp, err := a.client.Responses.New(ctx, a.Params(q))
	dur := time.Since(start)
	if err != nil {
		a.logger.Errorw("Ошибка ответа OpenAI", "duration", dur.String(), "error", err)
		return "", err
	}
	a.logger.Infow("Ответ OpenAI получен", "duration", dur.String())
	return strings.TrimSpace(resp.OutputText()), nil
}

func dataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
