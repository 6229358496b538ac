package subscriptions

import (
	"errors"
	"net/http"

	JSON "github.com/silktrader/wallpapers/pkg/json-utilities"
	"github.com/silktrader/wallpapers/pkg/rest"
)

func RegisterHandlers(engine *rest.Engine, store Storer) {
	engine.Post("/api/subscribe", subscribe(store))
}

// subscribe adds an email to the newsletter; subscribing twice isn't an error
func subscribe(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		data, err := JSON.DecodeValidate[SubscribeData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		err = store.Subscribe(request.Context(), data.Email)
		if errors.Is(err, ErrDuplicate) {
			JSON.OkMessage(writer, "You are already subscribed!")
			return
		}
		if err != nil {
			JSON.InternalServerError(writer, request, err)
			return
		}

		rest.Logger(request).Debug("new newsletter subscription")
		JSON.CreatedMessage(writer, "Successfully subscribed to our newsletter!")
	}
}
