package router

import (
	"net/http"

	"licxo/internal/handlers"
	"licxo/internal/storage"
	"licxo/internal/upload"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// New wires every route. Listing and user routes are public like the
// original API; shortlist routes require a Bearer token.
func New(database storage.Database, cache storage.Cache, uploader upload.Uploader, jwtSecret string, allowedOrigins []string) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc(`/`, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`Hello World!`))
	}).Methods(`GET`)

	hotels := router.PathPrefix(`/api/v1/hotels`).Subrouter()
	hotels.Handle(`/create`, handlers.CreateListingHandler(database, cache, uploader)).Methods(`POST`)
	hotels.Handle(`/hotels`, handlers.GetAllListingsHandler(database)).Methods(`GET`)
	hotels.Handle(`/filter`, handlers.FilterListingsHandler(database)).Methods(`GET`)
	hotels.Handle(`/find-nearest`, handlers.FindNearestHandler(database)).Methods(`POST`)
	hotels.Handle(`/myroom/{phone}`, handlers.GetListingsByPhoneHandler(database, cache)).Methods(`GET`)
	hotels.Handle(`/myroom/{phone}`, handlers.UpdateListingByPhoneHandler(database, cache)).Methods(`PUT`)
	hotels.Handle(`/delete/{id}`, handlers.DeleteListingHandler(database, cache)).Methods(`DELETE`)
	hotels.Handle(`/{id}`, handlers.GetListingByIDHandler(database)).Methods(`GET`)

	user := router.PathPrefix(`/api/v1/user`).Subrouter()
	user.Handle(`/send-otp`, handlers.SendOtpHandler(cache)).Methods(`POST`)
	user.Handle(`/verify`, handlers.VerifyOtpHandler(database, cache, jwtSecret)).Methods(`POST`)
	user.Handle(`/register`, handlers.RegisterHandler(database, jwtSecret)).Methods(`POST`)

	shortlist := router.PathPrefix(`/api/v1/shortlist`).Subrouter()
	shortlist.Handle(`/add`, handlers.AuthorizationMiddleware(handlers.AddShortlistHandler(database), jwtSecret)).Methods(`POST`)
	shortlist.Handle(`/remove/{userId}/{roomId}`, handlers.AuthorizationMiddleware(handlers.RemoveShortlistHandler(database), jwtSecret)).Methods(`DELETE`)
	shortlist.Handle(`/user/{userId}`, handlers.AuthorizationMiddleware(handlers.ShortlistByUserHandler(database), jwtSecret)).Methods(`GET`)
	shortlist.Handle(`/check/{userId}/{roomId}`, handlers.AuthorizationMiddleware(handlers.ShortlistCheckHandler(database), jwtSecret)).Methods(`GET`)

	feedback := router.PathPrefix(`/api/feedback`).Subrouter()
	feedback.Handle(``, handlers.SubmitFeedbackHandler(database)).Methods(`POST`)
	feedback.Handle(``, handlers.ListFeedbackHandler(database)).Methods(`GET`)

	handler := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{`GET`, `POST`, `DELETE`, `OPTIONS`, `PATCH`, `PUT`},
		AllowedHeaders:   []string{`Content-Type`, `Authorization`},
		AllowCredentials: true,
	}).Handler(handlers.RequestLogger(router))

	return handler
}
