package qthought

import (
	"math"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/cmplxs"
	"gonum.org/v1/gonum/mat"
)

// norm returns the Euclidean norm of a state vector.
func norm(v []complex128) float64 {
	return cmplxs.Norm(v, 2)
}

// normalize scales v in place to unit norm and returns the norm it had.
func normalize(v []complex128) float64 {
	n := norm(v)
	if n > 0 {
		cmplxs.ScaleReal(1/n, v)
	}
	return n
}

// inner returns ⟨a|b⟩.
func inner(a, b []complex128) complex128 {
	return cmplxs.Dot(a, b)
}

func cloneVector(v []complex128) []complex128 {
	if v == nil {
		return nil
	}
	out := make([]complex128, len(v))
	copy(out, v)
	return out
}

// kronVector returns a ⊗ b.
func kronVector(a, b []complex128) []complex128 {
	out := make([]complex128, 0, len(a)*len(b))
	for _, x := range a {
		for _, y := range b {
			out = append(out, x*y)
		}
	}
	return out
}

func identityMatrix(d int) *mat.CDense {
	m := mat.NewCDense(d, d, nil)
	for i := 0; i < d; i++ {
		m.Set(i, i, 1)
	}
	return m
}

func copyMatrix(a mat.CMatrix) *mat.CDense {
	r, c := a.Dims()
	m := mat.NewCDense(r, c, nil)
	m.Copy(a)
	return m
}

// row returns row i of m as a BLAS vector.
func row(m cblas128.General, i int) cblas128.Vector {
	return cblas128.Vector{N: m.Cols, Inc: 1, Data: m.Data[i*m.Stride : i*m.Stride+m.Cols]}
}

/*
gemm returns op(a)·op(b), where op conjugate-transposes its argument for
blas.ConjTrans. Callers guarantee compatible shapes.
*/
func gemm(tA, tB blas.Transpose, a, b *mat.CDense) *mat.CDense {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	m, n := ar, bc
	if tA != blas.NoTrans {
		m = ac
	}
	if tB != blas.NoTrans {
		n = br
	}
	out := mat.NewCDense(m, n, nil)
	cblas128.Gemm(tA, tB, 1, a.RawCMatrix(), b.RawCMatrix(), 0, out.RawCMatrix())
	return out
}

// mulMatrix returns a·b.
func mulMatrix(a, b *mat.CDense) *mat.CDense {
	return gemm(blas.NoTrans, blas.NoTrans, a, b)
}

// adjointMul returns a†·b.
func adjointMul(a, b *mat.CDense) *mat.CDense {
	return gemm(blas.ConjTrans, blas.NoTrans, a, b)
}

// kronMatrix returns a ⊗ b.
func kronMatrix(a, b *mat.CDense) *mat.CDense {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	out := mat.NewCDense(ar*br, ac*bc, nil)
	raw, rb := out.RawCMatrix(), b.RawCMatrix()
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			aij := a.At(i, j)
			if aij == 0 {
				continue
			}
			for k := 0; k < br; k++ {
				dst := row(raw, i*br+k)
				dst.Data = dst.Data[j*bc : (j+1)*bc]
				dst.N = bc
				cblas128.Axpy(aij, row(rb, k), dst)
			}
		}
	}
	return out
}

func mulVector(m *mat.CDense, v []complex128) []complex128 {
	r, c := m.Dims()
	out := make([]complex128, r)
	cblas128.Gemv(
		blas.NoTrans, 1, m.RawCMatrix(),
		cblas128.Vector{N: c, Inc: 1, Data: v}, 0,
		cblas128.Vector{N: r, Inc: 1, Data: out},
	)
	return out
}

// outer returns |v⟩⟨v|.
func outer(v []complex128) *mat.CDense {
	m := mat.NewCDense(len(v), len(v), nil)
	addOuter(m, v)
	return m
}

// addOuter adds |v⟩⟨v| to m in place.
func addOuter(m *mat.CDense, v []complex128) {
	x := cblas128.Vector{N: len(v), Inc: 1, Data: v}
	cblas128.Gerc(1, x, x, m.RawCMatrix())
}

// complementProjector returns I - p.
func complementProjector(p *mat.CDense) *mat.CDense {
	n, _ := p.Dims()
	out := identityMatrix(n)
	raw, rp := out.RawCMatrix(), p.RawCMatrix()
	for i := 0; i < n; i++ {
		cblas128.Axpy(-1, row(rp, i), row(raw, i))
	}
	return out
}

// commute reports whether ab ≈ ba within tol.
func commute(a, b *mat.CDense, tol float64) bool {
	return mat.CEqualApprox(mulMatrix(a, b), mulMatrix(b, a), tol)
}

// isZeroMatrix reports whether the Frobenius norm of m is within tol of zero.
func isZeroMatrix(m *mat.CDense, tol float64) bool {
	raw := m.RawCMatrix()
	var sum float64
	for i := 0; i < raw.Rows; i++ {
		n := cblas128.Nrm2(row(raw, i))
		sum += n * n
	}
	return math.Sqrt(sum) <= tol
}

// sandwich returns u† p u, carrying p back through u.
func sandwich(u, p *mat.CDense) *mat.CDense {
	return adjointMul(u, mulMatrix(p, u))
}

// conjugate returns u p u†, carrying p forward through u.
func conjugate(u, p *mat.CDense) *mat.CDense {
	return mulMatrix(u, gemm(blas.NoTrans, blas.ConjTrans, p, u))
}

// withinTolerance reports whether |a-b| ≤ tol.
func withinTolerance(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
