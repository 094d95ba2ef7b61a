package store

import (
	"strings"

	"fitstudio-backend/internal/domain/model"
)

// Typed builders for the fixed set of storage paths. Period-partitioned
// collections take a model.Period, so the "MM-YYYY" key format is guaranteed
// at construction and the "/" display separator can never leak into a path.

// CollectionPath addresses a collection (odd number of segments).
type CollectionPath struct {
	segments []string
}

// DocPath addresses a document (even number of segments).
type DocPath struct {
	segments []string
}

func col(segments ...string) CollectionPath { return CollectionPath{segments: segments} }

// Doc returns the path of the document with the given id in this collection.
func (c CollectionPath) Doc(id string) DocPath {
	return DocPath{segments: append(append([]string{}, c.segments...), sanitize(id))}
}

func (c CollectionPath) String() string { return strings.Join(c.segments, "/") }
func (p DocPath) String() string        { return strings.Join(p.segments, "/") }

// Parent returns the collection the document belongs to.
func (p DocPath) Parent() CollectionPath {
	return CollectionPath{segments: p.segments[:len(p.segments)-1]}
}

// ID returns the last path segment.
func (p DocPath) ID() string { return p.segments[len(p.segments)-1] }

// sanitize strips the path separator from id segments. CPFs and generated
// ids never contain it; emails cannot either, this is a backstop only.
func sanitize(s string) string { return strings.ReplaceAll(s, "/", "_") }

// --- fixed collection roots ---

// Clients returns the canonical client collection.
func Clients() CollectionPath { return col("clientes") }

// AdminClients returns the administrative mirror of the client collection.
func AdminClients() CollectionPath { return col("gestao_clientes") }

// EmailIndex returns the email→client index collection.
func EmailIndex() CollectionPath { return col("indices_email") }

// AdminEmailIndex returns the administrative mirror of the email index.
func AdminEmailIndex() CollectionPath { return col("gestao_indices_email") }

// Plans returns the membership plan collection.
func Plans() CollectionPath { return col("planos") }

func ClientPath(cpf string) DocPath            { return Clients().Doc(cpf) }
func AdminClientPath(cpf string) DocPath       { return AdminClients().Doc(cpf) }
func EmailIndexPath(email string) DocPath      { return EmailIndex().Doc(email) }
func AdminEmailIndexPath(email string) DocPath { return AdminEmailIndex().Doc(email) }

// --- period-partitioned collections ---

func Subscriptions(p model.Period) CollectionPath {
	return col("assinaturas", p.Key(), "itens")
}

func SubscriptionPath(p model.Period, id string) DocPath {
	return Subscriptions(p).Doc(id)
}

func Receivables(p model.Period) CollectionPath {
	return col("receitas", p.Key(), "itens")
}

// ReceivablePath keys the receivable by client CPF within the period.
func ReceivablePath(p model.Period, cpf string) DocPath {
	return Receivables(p).Doc(cpf)
}

func Expenses(p model.Period) CollectionPath {
	return col("despesas", p.Key(), "itens")
}

func ExpensePath(p model.Period, id string) DocPath {
	return Expenses(p).Doc(id)
}

// --- client-scoped collections ---

func Assessments(cpf string) CollectionPath {
	return col("avaliacoes", sanitize(cpf), "itens")
}

func AssessmentPath(cpf, id string) DocPath {
	return Assessments(cpf).Doc(id)
}
