// Package access serves the document access API: member groups, document
// groups and the relations that let one reach the other.
package access

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/evocms-community/evo-authz/internal/db/controller/accessgroup"
	"github.com/evocms-community/evo-authz/internal/permission"
	"github.com/evocms-community/evo-authz/internal/web/handler"
)

const (
	basePath = handler.APIPath + "/permissions"
	idSuffix = "/:" + handler.ParamID + "<int>"

	// MemberGroupsPath is the base path of the member groups API.
	MemberGroupsPath = basePath + "/groups"
	// DocumentGroupsPath is the base path of the document groups API.
	DocumentGroupsPath = basePath + "/resources"
	// RelationsPath is the base path of the relations API.
	RelationsPath = basePath + "/relations"
)

// GroupInput creates or renames a group.
type GroupInput struct {
	Name string `json:"name" validate:"required,max=191"`
}

// RelationInput links a member group to a document group.
// Context 0 is the manager, 1 the web site.
type RelationInput struct {
	MemberGroupID   uint `json:"memberGroupId"   validate:"required"`
	DocumentGroupID uint `json:"documentGroupId" validate:"required"`
	Context         int  `json:"context"         validate:"oneof=0 1"`
}

// Service is the access handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Handler is the access handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers the routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || !deps.Valid() {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.deps = deps

	handler.Register(app, deps, fiber.MethodGet, MemberGroupsPath, permission.RouteMemberGroupsIndex, s.MemberGroupIndex)
	handler.Register(app, deps, fiber.MethodPost, MemberGroupsPath, permission.RouteMemberGroupsStore, s.MemberGroupStore)
	handler.Register(app, deps, fiber.MethodPut, MemberGroupsPath+idSuffix, permission.RouteMemberGroupsUpdate,
		s.MemberGroupUpdate)
	handler.Register(app, deps, fiber.MethodDelete, MemberGroupsPath+idSuffix, permission.RouteMemberGroupsDestroy,
		s.MemberGroupDestroy)

	handler.Register(app, deps, fiber.MethodGet, DocumentGroupsPath, permission.RouteDocumentGroupsIndex,
		s.DocumentGroupIndex)
	handler.Register(app, deps, fiber.MethodPost, DocumentGroupsPath, permission.RouteDocumentGroupsStore,
		s.DocumentGroupStore)
	handler.Register(app, deps, fiber.MethodPut, DocumentGroupsPath+idSuffix, permission.RouteDocumentGroupsUpdate,
		s.DocumentGroupUpdate)
	handler.Register(app, deps, fiber.MethodDelete, DocumentGroupsPath+idSuffix, permission.RouteDocumentGroupsDestroy,
		s.DocumentGroupDestroy)

	handler.Register(app, deps, fiber.MethodGet, RelationsPath, permission.RouteRelationsIndex, s.RelationIndex)
	handler.Register(app, deps, fiber.MethodPost, RelationsPath, permission.RouteRelationsStore, s.RelationStore)
	handler.Register(app, deps, fiber.MethodDelete, RelationsPath+idSuffix, permission.RouteRelationsDestroy,
		s.RelationDestroy)

	return nil
}

// MemberGroupIndex lists the member groups.
func (s *Service) MemberGroupIndex(c *fiber.Ctx) error {
	groups, err := accessgroup.ListMemberGroups(s.deps.DB.WithContext(c.UserContext()))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(groups)
}

// MemberGroupStore creates a member group.
func (s *Service) MemberGroupStore(c *fiber.Ctx) error {
	var in GroupInput
	if ok, err := handler.Bind(c, s.deps.Validator, &in); !ok {
		return err
	}

	g, err := accessgroup.CreateMemberGroup(s.deps.DB.WithContext(c.UserContext()), in.Name)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(g)
}

// MemberGroupUpdate renames a member group.
func (s *Service) MemberGroupUpdate(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, err)
	}

	var in GroupInput
	if ok, bindErr := handler.Bind(c, s.deps.Validator, &in); !ok {
		return bindErr
	}

	g, err := accessgroup.RenameMemberGroup(s.deps.DB.WithContext(c.UserContext()), id, in.Name)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(g)
}

// MemberGroupDestroy deletes a member group with its memberships and relations.
func (s *Service) MemberGroupDestroy(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, err)
	}

	if err = accessgroup.DeleteMemberGroup(s.deps.DB.WithContext(c.UserContext()), id); err != nil {
		return fail(c, err)
	}

	log.Info().Uint("memberGroupID", id).Msg("member group deleted")

	return c.SendStatus(fiber.StatusNoContent)
}

// DocumentGroupIndex lists the document groups.
func (s *Service) DocumentGroupIndex(c *fiber.Ctx) error {
	groups, err := accessgroup.ListDocumentGroups(s.deps.DB.WithContext(c.UserContext()))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(groups)
}

// DocumentGroupStore creates a document group.
func (s *Service) DocumentGroupStore(c *fiber.Ctx) error {
	var in GroupInput
	if ok, err := handler.Bind(c, s.deps.Validator, &in); !ok {
		return err
	}

	g, err := accessgroup.CreateDocumentGroup(s.deps.DB.WithContext(c.UserContext()), in.Name)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(g)
}

// DocumentGroupUpdate renames a document group.
func (s *Service) DocumentGroupUpdate(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, err)
	}

	var in GroupInput
	if ok, bindErr := handler.Bind(c, s.deps.Validator, &in); !ok {
		return bindErr
	}

	g, err := accessgroup.RenameDocumentGroup(s.deps.DB.WithContext(c.UserContext()), id, in.Name)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(g)
}

// DocumentGroupDestroy deletes a document group. Resources left in no group become public.
func (s *Service) DocumentGroupDestroy(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, err)
	}

	if err = accessgroup.DeleteDocumentGroup(s.deps.DB.WithContext(c.UserContext()), id); err != nil {
		return fail(c, err)
	}

	log.Info().Uint("documentGroupID", id).Msg("document group deleted")

	return c.SendStatus(fiber.StatusNoContent)
}

// RelationIndex lists every relation with both group names.
func (s *Service) RelationIndex(c *fiber.Ctx) error {
	relations, err := accessgroup.ListRelations(s.deps.DB.WithContext(c.UserContext()))
	if err != nil {
		return fail(c, err)
	}

	if relations == nil {
		relations = []accessgroup.Relation{}
	}

	return c.JSON(relations)
}

// RelationStore links a member group to a document group.
func (s *Service) RelationStore(c *fiber.Ctx) error {
	var in RelationInput
	if ok, err := handler.Bind(c, s.deps.Validator, &in); !ok {
		return err
	}

	rel, err := accessgroup.Link(s.deps.DB.WithContext(c.UserContext()), in.MemberGroupID, in.DocumentGroupID, in.Context)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(rel)
}

// RelationDestroy removes a relation.
func (s *Service) RelationDestroy(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, err)
	}

	if err = accessgroup.Unlink(s.deps.DB.WithContext(c.UserContext()), id); err != nil {
		return fail(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, accessgroup.ErrDocumentGroupNotFound),
		errors.Is(err, accessgroup.ErrMemberGroupNotFound),
		errors.Is(err, accessgroup.ErrRelationNotFound):
		return handler.Fail(c, fiber.StatusNotFound, err)
	case errors.Is(err, accessgroup.ErrNameEmpty), errors.Is(err, accessgroup.ErrInvalidContext):
		return handler.Fail(c, fiber.StatusUnprocessableEntity, err)
	case errors.Is(err, accessgroup.ErrGroupAlreadyExists), errors.Is(err, accessgroup.ErrRelationExists):
		return handler.Fail(c, fiber.StatusConflict, err)
	default:
		log.Error().Err(err).Msg("access operation failed")
		return handler.Fail(c, fiber.StatusInternalServerError, err)
	}
}

