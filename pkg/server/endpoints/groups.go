package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/lanbitou/lanbitou-in-go/pkg/audit"
	"github.com/lanbitou/lanbitou-in-go/pkg/identity"
	"github.com/lanbitou/lanbitou-in-go/pkg/model"
	"github.com/lanbitou/lanbitou-in-go/pkg/server"
	"github.com/lanbitou/lanbitou-in-go/pkg/server/store"
)

// GroupResponse represents a group in API responses
type GroupResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ManagerID   int64  `json:"manager_id"`
}

// GroupMemberResponse represents one member in a group detail response
type GroupMemberResponse struct {
	MembershipID int64  `json:"membership_id"`
	UserID       int64  `json:"user_id"`
	Email        string `json:"email"`
	Permission   string `json:"permission"`
}

// GroupDetailResponse is the group detail with its member list
type GroupDetailResponse struct {
	ID          int64                 `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	ManagerID   int64                 `json:"manager_id"`
	Members     []GroupMemberResponse `json:"members"`
}

// RegisterGroupsEndpoints registers group and membership endpoints
func RegisterGroupsEndpoints(s *server.Server) {
	directoryStore := s.DirectoryStore
	usersStore := s.UsersStore

	groupsRouter := s.Router.PathPrefix("/groups").Subrouter()
	groupsRouter.Use(s.JWTMiddleware.Middleware)

	groupsRouter.HandleFunc("", handleCreateGroup(directoryStore)).Methods("POST")
	groupsRouter.HandleFunc("", handleListManagedGroups(directoryStore)).Methods("GET")
	groupsRouter.HandleFunc("/{id:[0-9]+}", handleGroupDetail(directoryStore)).Methods("GET")
	groupsRouter.HandleFunc("/{id:[0-9]+}", handleUpdateGroup(directoryStore)).Methods("PUT")
	groupsRouter.HandleFunc("/{id:[0-9]+}", handleDeleteGroup(directoryStore)).Methods("DELETE")
	groupsRouter.HandleFunc("/{id:[0-9]+}/members", handleAddMember(directoryStore, usersStore)).Methods("POST")
	groupsRouter.HandleFunc("/{id:[0-9]+}/members/{userID:[0-9]+}", handleUpdateMember(directoryStore)).Methods("PUT", "PATCH")
	groupsRouter.HandleFunc("/{id:[0-9]+}/members/{userID:[0-9]+}", handleRemoveMember(directoryStore)).Methods("DELETE")
}

func groupIDFromRequest(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

// managedGroup fetches a group and enforces that actorID is its manager,
// answering the request itself on failure. Returns nil when the request has
// been answered.
func managedGroup(w http.ResponseWriter, directoryStore store.DirectoryStore, groupID, actorID int64) *model.Group {
	group, err := directoryStore.FetchGroup(groupID)
	if err != nil {
		if errors.Is(err, store.ErrGroupNotFound) {
			respondWithMessage(w, http.StatusNotFound, "Group not found")
			return nil
		}
		respondWithMessage(w, http.StatusInternalServerError, "Failed to fetch group")
		return nil
	}
	if group.ManagerID != actorID {
		respondWithMessage(w, http.StatusForbidden, "You are not the manager of this group")
		return nil
	}
	return group
}

func handleCreateGroup(directoryStore store.DirectoryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithMessage(w, http.StatusUnauthorized, "Unable to determine identity")
			return
		}

		var body struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
			respondWithMessage(w, http.StatusBadRequest, "Group name is required")
			return
		}

		group, err := directoryStore.CreateGroup(id.UserID, body.Name, body.Description)
		if err != nil {
			if errors.Is(err, store.ErrDuplicateGroupName) {
				respondWithMessage(w, http.StatusConflict, "Group name already exists")
				return
			}
			respondWithMessage(w, http.StatusInternalServerError, "Failed to create group")
			return
		}

		respondWithJSON(w, http.StatusCreated, map[string]interface{}{
			"msg":      "Group created successfully",
			"group_id": group.ID,
		})
	}
}

func handleListManagedGroups(directoryStore store.DirectoryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithMessage(w, http.StatusUnauthorized, "Unable to determine identity")
			return
		}

		groups, err := directoryStore.ListGroupsManagedBy(id.UserID)
		if err != nil {
			respondWithMessage(w, http.StatusInternalServerError, "Failed to list groups")
			return
		}

		response := make([]GroupResponse, 0, len(groups))
		for _, g := range groups {
			response = append(response, GroupResponse{
				ID:          g.ID,
				Name:        g.Name,
				Description: g.Description,
				ManagerID:   g.ManagerID,
			})
		}

		respondWithJSON(w, http.StatusOK, response)
	}
}

func handleGroupDetail(directoryStore store.DirectoryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithMessage(w, http.StatusUnauthorized, "Unable to determine identity")
			return
		}

		groupID, err := groupIDFromRequest(r)
		if err != nil {
			respondWithMessage(w, http.StatusBadRequest, "Invalid group id")
			return
		}

		group, err := directoryStore.FetchGroup(groupID)
		if err != nil {
			if errors.Is(err, store.ErrGroupNotFound) {
				respondWithMessage(w, http.StatusNotFound, "Group not found")
				return
			}
			respondWithMessage(w, http.StatusInternalServerError, "Failed to fetch group")
			return
		}

		members, err := directoryStore.ListMembersOfGroup(groupID)
		if err != nil {
			respondWithMessage(w, http.StatusInternalServerError, "Failed to list members")
			return
		}

		// Detail is visible to the manager and to members only.
		if group.ManagerID != id.UserID && !containsMember(members, id.UserID) {
			respondWithMessage(w, http.StatusForbidden, "Unauthorized access to group details")
			return
		}

		memberData := make([]GroupMemberResponse, 0, len(members))
		for _, m := range members {
			memberData = append(memberData, GroupMemberResponse{
				MembershipID: m.MembershipID,
				UserID:       m.UserID,
				Email:        m.Email,
				Permission:   m.Level.String(),
			})
		}

		respondWithJSON(w, http.StatusOK, GroupDetailResponse{
			ID:          group.ID,
			Name:        group.Name,
			Description: group.Description,
			ManagerID:   group.ManagerID,
			Members:     memberData,
		})
	}
}

func containsMember(members []store.GroupMember, userID int64) bool {
	for _, m := range members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

func handleUpdateGroup(directoryStore store.DirectoryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithMessage(w, http.StatusUnauthorized, "Unable to determine identity")
			return
		}

		groupID, err := groupIDFromRequest(r)
		if err != nil {
			respondWithMessage(w, http.StatusBadRequest, "Invalid group id")
			return
		}

		if managedGroup(w, directoryStore, groupID, id.UserID) == nil {
			return
		}

		var body struct {
			Name        *string `json:"name"`
			Description *string `json:"description"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondWithMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := directoryStore.UpdateGroup(groupID, body.Name, body.Description); err != nil {
			if errors.Is(err, store.ErrDuplicateGroupName) {
				respondWithMessage(w, http.StatusConflict, "Group name already exists")
				return
			}
			respondWithMessage(w, http.StatusInternalServerError, "Failed to update group")
			return
		}

		respondWithMessage(w, http.StatusOK, "Group updated successfully")
	}
}

func handleDeleteGroup(directoryStore store.DirectoryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithMessage(w, http.StatusUnauthorized, "Unable to determine identity")
			return
		}

		groupID, err := groupIDFromRequest(r)
		if err != nil {
			respondWithMessage(w, http.StatusBadRequest, "Invalid group id")
			return
		}

		if managedGroup(w, directoryStore, groupID, id.UserID) == nil {
			return
		}

		// Removes the group's memberships and grants in the same transaction.
		if err := directoryStore.DeleteGroup(groupID); err != nil {
			if errors.Is(err, store.ErrGroupNotFound) {
				respondWithMessage(w, http.StatusNotFound, "Group not found")
				return
			}
			respondWithMessage(w, http.StatusInternalServerError, "Failed to delete group")
			return
		}

		respondWithMessage(w, http.StatusOK, "Group deleted successfully")
	}
}

func handleAddMember(directoryStore store.DirectoryStore, usersStore store.UsersStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithMessage(w, http.StatusUnauthorized, "Unable to determine identity")
			return
		}

		groupID, err := groupIDFromRequest(r)
		if err != nil {
			respondWithMessage(w, http.StatusBadRequest, "Invalid group id")
			return
		}

		if managedGroup(w, directoryStore, groupID, id.UserID) == nil {
			return
		}

		var body struct {
			UserID     *int64 `json:"user_id"`
			Permission string `json:"permission"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == nil {
			respondWithMessage(w, http.StatusBadRequest, "User ID is required")
			return
		}

		if _, err := usersStore.FetchUser(*body.UserID); err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				respondWithMessage(w, http.StatusNotFound, "User not found")
				return
			}
			respondWithMessage(w, http.StatusInternalServerError, "Failed to add member")
			return
		}

		level := model.PermissionRead
		if body.Permission != "" {
			level, err = parseLevel(body.Permission)
			if err != nil {
				respondWithMessage(w, http.StatusBadRequest, "Invalid permission type")
				return
			}
		}

		if err := directoryStore.AddMember(groupID, *body.UserID, level); err != nil {
			if errors.Is(err, store.ErrDuplicateMembership) {
				respondWithMessage(w, http.StatusConflict, "User is already a member of this group")
				return
			}
			respondWithMessage(w, http.StatusInternalServerError, "Failed to add member")
			return
		}

		audit.Log(memberEvent(id.UserID, r, groupID, *body.UserID, level.String(), "add"))

		respondWithMessage(w, http.StatusCreated, "User added to group")
	}
}

func handleUpdateMember(directoryStore store.DirectoryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithMessage(w, http.StatusUnauthorized, "Unable to determine identity")
			return
		}

		groupID, err := groupIDFromRequest(r)
		if err != nil {
			respondWithMessage(w, http.StatusBadRequest, "Invalid group id")
			return
		}

		userID, err := strconv.ParseInt(mux.Vars(r)["userID"], 10, 64)
		if err != nil {
			respondWithMessage(w, http.StatusBadRequest, "Invalid user id")
			return
		}

		if managedGroup(w, directoryStore, groupID, id.UserID) == nil {
			return
		}

		var body struct {
			Permission string `json:"permission"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Permission == "" {
			respondWithMessage(w, http.StatusBadRequest, "New permission is required")
			return
		}

		level, err := parseLevel(body.Permission)
		if err != nil {
			respondWithMessage(w, http.StatusBadRequest, "Invalid permission type")
			return
		}

		if err := directoryStore.UpdateMemberLevel(groupID, userID, level); err != nil {
			if errors.Is(err, store.ErrMembershipNotFound) {
				respondWithMessage(w, http.StatusNotFound, "User not found in this group")
				return
			}
			respondWithMessage(w, http.StatusInternalServerError, "Failed to update member")
			return
		}

		audit.Log(memberEvent(id.UserID, r, groupID, userID, level.String(), "update"))

		respondWithMessage(w, http.StatusOK, "Group member permission updated successfully")
	}
}

func handleRemoveMember(directoryStore store.DirectoryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithMessage(w, http.StatusUnauthorized, "Unable to determine identity")
			return
		}

		groupID, err := groupIDFromRequest(r)
		if err != nil {
			respondWithMessage(w, http.StatusBadRequest, "Invalid group id")
			return
		}

		userID, err := strconv.ParseInt(mux.Vars(r)["userID"], 10, 64)
		if err != nil {
			respondWithMessage(w, http.StatusBadRequest, "Invalid user id")
			return
		}

		if managedGroup(w, directoryStore, groupID, id.UserID) == nil {
			return
		}

		if err := directoryStore.RemoveMember(groupID, userID); err != nil {
			if errors.Is(err, store.ErrMembershipNotFound) {
				respondWithMessage(w, http.StatusNotFound, "User not found in this group")
				return
			}
			respondWithMessage(w, http.StatusInternalServerError, "Failed to remove member")
			return
		}

		audit.Log(memberEvent(id.UserID, r, groupID, userID, "", "remove"))

		respondWithMessage(w, http.StatusOK, "User removed from group")
	}
}

func memberEvent(managerID int64, r *http.Request, groupID, userID int64, level, operation string) audit.MemberEvent {
	return audit.MemberEvent{
		ManagerID: managerID,
		ClientIP:  clientIP(r),
		GroupID:   groupID,
		UserID:    userID,
		Level:     level,
		Operation: operation,
		Success:   true,
	}
}
